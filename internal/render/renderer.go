package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

// RenderOptions decorates the board image.
type RenderOptions struct {
	LastMove  *gomoku.Position
	HUDHeader string
	HUDTurn   string
	// TurnColor tints the turn panel marker; NoColor hides it.
	TurnColor gomoku.Color
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, board gomoku.Board, opts RenderOptions) ([]byte, error)
}

type gobanRenderer struct {
	cell int
}

// NewBoardRenderer returns a renderer drawing cell pixels between lines.
// Values below 16 fall back to 36.
func NewBoardRenderer(cell int) BoardRenderer {
	if cell < 16 {
		cell = 36
	}
	return &gobanRenderer{cell: cell}
}

const (
	sideMargin   = 40
	topMargin    = 96
	bottomMargin = 40
	hudHeight    = 30
	hudGap       = 10
	hudRadius    = 10
)

var (
	woodColor      = color.RGBA{R: 222, G: 178, B: 108, A: 255}
	woodEdgeColor  = color.RGBA{R: 196, G: 150, B: 86, A: 255}
	gridColor      = color.RGBA{R: 60, G: 40, B: 20, A: 255}
	labelColor     = color.RGBA{R: 70, G: 48, B: 26, A: 255}
	lastMoveColor  = color.NRGBA{R: 220, G: 40, B: 40, A: 255}
	hudPanelColor  = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudShadowColor = color.NRGBA{A: 50}
	hudTextColor   = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnColor   = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
)

func (r *gobanRenderer) RenderPNG(ctx context.Context, board gomoku.Board, opts RenderOptions) ([]byte, error) {
	n := board.Size()
	if n < 2 {
		return nil, fmt.Errorf("board is empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	span := (n - 1) * r.cell
	width := span + sideMargin*2
	height := span + topMargin + bottomMargin
	origin := image.Point{X: sideMargin, Y: topMargin}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(woodColor), image.Point{}, imagedraw.Src)
	boardRect := image.Rect(origin.X-r.cell/2, origin.Y-r.cell/2, origin.X+span+r.cell/2, origin.Y+span+r.cell/2)
	drawFrame(img, boardRect, woodEdgeColor)

	drawHUD(img, opts, boardRect)
	r.drawGrid(img, n, origin)
	r.drawStarPoints(img, n, origin)
	r.drawLabels(img, n, origin)
	if err := r.drawStones(img, board, origin); err != nil {
		return nil, err
	}
	r.drawLastMove(img, n, opts.LastMove, origin)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *gobanRenderer) point(origin image.Point, p gomoku.Position) image.Point {
	return image.Point{X: origin.X + p.Col*r.cell, Y: origin.Y + p.Row*r.cell}
}

func (r *gobanRenderer) drawGrid(img *image.RGBA, n int, origin image.Point) {
	span := (n - 1) * r.cell
	fill := image.NewUniform(gridColor)
	for i := 0; i < n; i++ {
		off := i * r.cell
		imagedraw.Draw(img, image.Rect(origin.X, origin.Y+off, origin.X+span+1, origin.Y+off+1), fill, image.Point{}, imagedraw.Src)
		imagedraw.Draw(img, image.Rect(origin.X+off, origin.Y, origin.X+off+1, origin.Y+span+1), fill, image.Point{}, imagedraw.Src)
	}
	// Heavier outline.
	imagedraw.Draw(img, image.Rect(origin.X-1, origin.Y-1, origin.X+span+2, origin.Y+1), fill, image.Point{}, imagedraw.Src)
	imagedraw.Draw(img, image.Rect(origin.X-1, origin.Y+span, origin.X+span+2, origin.Y+span+2), fill, image.Point{}, imagedraw.Src)
	imagedraw.Draw(img, image.Rect(origin.X-1, origin.Y-1, origin.X+1, origin.Y+span+2), fill, image.Point{}, imagedraw.Src)
	imagedraw.Draw(img, image.Rect(origin.X+span, origin.Y-1, origin.X+span+2, origin.Y+span+2), fill, image.Point{}, imagedraw.Src)
}

func (r *gobanRenderer) drawStarPoints(img *image.RGBA, n int, origin image.Point) {
	radius := r.cell / 10
	if radius < 2 {
		radius = 2
	}
	for _, p := range StarPoints(n) {
		drawDisc(img, r.point(origin, p), radius, gridColor)
	}
}

// StarPoints returns the hoshi for an n x n board: the four corner points
// and the center, or just the center on very small boards.
func StarPoints(n int) []gomoku.Position {
	if n < 5 {
		return nil
	}
	c := n / 2
	if n < 9 {
		return []gomoku.Position{{Row: c, Col: c}}
	}
	edge := 2
	if n >= 13 {
		edge = 3
	}
	far := n - 1 - edge
	pts := []gomoku.Position{
		{Row: edge, Col: edge}, {Row: edge, Col: far},
		{Row: c, Col: c},
		{Row: far, Col: edge}, {Row: far, Col: far},
	}
	if n >= 19 {
		pts = append(pts,
			gomoku.Position{Row: edge, Col: c}, gomoku.Position{Row: c, Col: edge},
			gomoku.Position{Row: c, Col: far}, gomoku.Position{Row: far, Col: c},
		)
	}
	return pts
}

// ColumnLabel names column col the way players type it: A, B, C ...
func ColumnLabel(col int) string {
	if col < 0 || col >= 26 {
		return "?"
	}
	return string(rune('A' + col))
}

func (r *gobanRenderer) drawLabels(img *image.RGBA, n int, origin image.Point) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face, Src: image.NewUniform(labelColor)}
	ascent := face.Metrics().Ascent.Ceil()
	span := (n - 1) * r.cell
	for i := 0; i < n; i++ {
		x := origin.X + i*r.cell
		drawCenteredText(drawer, ColumnLabel(i), x, origin.Y-r.cell/2-6)
		drawCenteredText(drawer, ColumnLabel(i), x, origin.Y+span+r.cell/2+ascent+4)

		y := origin.Y + i*r.cell + ascent/2
		label := strconv.Itoa(i + 1)
		drawCenteredText(drawer, label, origin.X-r.cell/2-12, y)
		drawCenteredText(drawer, label, origin.X+span+r.cell/2+12, y)
	}
}

func (r *gobanRenderer) drawStones(img *image.RGBA, board gomoku.Board, origin image.Point) error {
	size := r.cell - 2
	for row := range board {
		for col, c := range board[row] {
			if !c.Valid() {
				continue
			}
			stone, err := stoneImage(c, size)
			if err != nil {
				return err
			}
			center := r.point(origin, gomoku.Position{Row: row, Col: col})
			at := image.Rect(center.X-size/2, center.Y-size/2, center.X-size/2+size, center.Y-size/2+size)
			imagedraw.Draw(img, at, stone, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func (r *gobanRenderer) drawLastMove(img *image.RGBA, n int, p *gomoku.Position, origin image.Point) {
	if p == nil || !p.InBounds(n) {
		return
	}
	radius := r.cell / 7
	if radius < 3 {
		radius = 3
	}
	drawDisc(img, r.point(origin, *p), radius, lastMoveColor)
}

func drawHUD(img *image.RGBA, opts RenderOptions, boardRect image.Rectangle) {
	face := basicfont.Face7x13
	drawer := &font.Drawer{Dst: img, Face: face}

	title := strings.TrimSpace(opts.HUDHeader)
	if title == "" {
		title = "OMOK"
	}
	turn := strings.TrimSpace(opts.HUDTurn)

	turnBottom := boardRect.Min.Y - hudGap
	turnTop := turnBottom - hudHeight
	titleBottom := turnTop - hudGap/2
	titleTop := titleBottom - hudHeight
	if titleTop < 4 {
		titleTop = 4
	}

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Max.X, titleBottom)
	drawRoundedPanel(img, titleRect.Add(image.Pt(0, 3)), hudRadius, hudShadowColor)
	drawRoundedPanel(img, titleRect, hudRadius, hudPanelColor)
	drawCenteredString(drawer, titleRect, truncateWithEllipsis(face, title, titleRect.Dx()-24), hudTextColor)

	if turn == "" {
		return
	}
	w := drawer.MeasureString(turn).Round() + 56
	if w > boardRect.Dx() {
		w = boardRect.Dx()
	}
	left := boardRect.Min.X + (boardRect.Dx()-w)/2
	turnRect := image.Rect(left, turnTop, left+w, turnBottom)
	drawRoundedPanel(img, turnRect, hudRadius, hudPanelColor)
	drawCenteredString(drawer, turnRect, truncateWithEllipsis(face, turn, w-40), hudTurnColor)
	if opts.TurnColor.Valid() {
		if stone, err := stoneImage(opts.TurnColor, 16); err == nil {
			y := turnRect.Min.Y + (turnRect.Dy()-16)/2
			imagedraw.Draw(img, image.Rect(turnRect.Min.X+8, y, turnRect.Min.X+24, y+16), stone, image.Point{}, imagedraw.Over)
		}
	}
}

func drawFrame(img *image.RGBA, rect image.Rectangle, clr color.Color) {
	fill := image.NewUniform(clr)
	for _, edge := range []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+2),
		image.Rect(rect.Min.X, rect.Max.Y-2, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+2, rect.Max.Y),
		image.Rect(rect.Max.X-2, rect.Min.Y, rect.Max.X, rect.Max.Y),
	} {
		imagedraw.Draw(img, edge, fill, image.Point{}, imagedraw.Src)
	}
}
