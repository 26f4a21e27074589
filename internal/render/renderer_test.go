package render

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

func luminance(img image.Image, x, y int) uint32 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (r + g + b) / 3
}

func TestRenderPNG(t *testing.T) {
	board := gomoku.NewBoard(15)
	board.Set(gomoku.Position{Row: 7, Col: 7}, gomoku.Black)
	board.Set(gomoku.Position{Row: 7, Col: 8}, gomoku.White)

	r := NewBoardRenderer(36)
	out, err := r.RenderPNG(context.Background(), board, RenderOptions{
		LastMove:  &gomoku.Position{Row: 7, Col: 8},
		HUDHeader: "Round 1 | Alice vs Bob",
		HUDTurn:   "BLACK to move",
		TurnColor: gomoku.Black,
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	wantW := 14*36 + sideMargin*2
	wantH := 14*36 + topMargin + bottomMargin
	if b := img.Bounds(); b.Dx() != wantW || b.Dy() != wantH {
		t.Fatalf("size %v, want %dx%d", b, wantW, wantH)
	}

	// Sample a few pixels off the stone centers to avoid the grid lines.
	bx, by := sideMargin+7*36+6, topMargin+7*36+6
	wx, wy := sideMargin+8*36+6, topMargin+7*36+6
	if luminance(img, bx, by) >= luminance(img, wx, wy) {
		t.Fatalf("black stone should be darker than white stone")
	}

	// Last-move marker sits on the white stone center.
	cr, cg, _, _ := img.At(sideMargin+8*36, topMargin+7*36).RGBA()
	if cr <= cg {
		t.Fatalf("last move marker missing: r=%d g=%d", cr, cg)
	}
}

func TestRenderRejectsEmptyBoardAndCancelledContext(t *testing.T) {
	r := NewBoardRenderer(0)
	if _, err := r.RenderPNG(context.Background(), nil, RenderOptions{}); err == nil {
		t.Fatalf("empty board should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, gomoku.NewBoard(9), RenderOptions{}); err == nil {
		t.Fatalf("cancelled context should fail")
	}
}

func TestStarPoints(t *testing.T) {
	cases := []struct {
		n    int
		want int
		has  gomoku.Position
	}{
		{15, 5, gomoku.Position{Row: 3, Col: 3}},
		{19, 9, gomoku.Position{Row: 9, Col: 15}},
		{9, 5, gomoku.Position{Row: 2, Col: 6}},
		{7, 1, gomoku.Position{Row: 3, Col: 3}},
	}
	for _, tc := range cases {
		pts := StarPoints(tc.n)
		if len(pts) != tc.want {
			t.Errorf("n=%d: %d points, want %d", tc.n, len(pts), tc.want)
			continue
		}
		found := false
		for _, p := range pts {
			if p == tc.has {
				found = true
			}
		}
		if !found {
			t.Errorf("n=%d: missing %v", tc.n, tc.has)
		}
	}
	if got := ColumnLabel(7); got != "H" {
		t.Fatalf("ColumnLabel(7)=%q", got)
	}
}
