package omokpresenter

import (
	"errors"
	"testing"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

func TestParseCoord(t *testing.T) {
	cases := []struct {
		in      string
		size    int
		want    gomoku.Position
		wantErr error
	}{
		{"H8", 15, gomoku.Position{Row: 7, Col: 7}, nil},
		{" h8 ", 15, gomoku.Position{Row: 7, Col: 7}, nil},
		{"A1", 15, gomoku.Position{Row: 0, Col: 0}, nil},
		{"O15", 15, gomoku.Position{Row: 14, Col: 14}, nil},
		{"P1", 15, gomoku.Position{}, ErrCoordRange},
		{"A16", 15, gomoku.Position{}, ErrCoordRange},
		{"S19", 19, gomoku.Position{Row: 18, Col: 18}, nil},
		{"A0", 15, gomoku.Position{}, ErrCoordSyntax},
		{"8H", 15, gomoku.Position{}, ErrCoordSyntax},
		{"H", 15, gomoku.Position{}, ErrCoordSyntax},
		{"H8a", 15, gomoku.Position{}, ErrCoordSyntax},
		{"", 15, gomoku.Position{}, ErrCoordSyntax},
	}
	for _, tc := range cases {
		got, err := ParseCoord(tc.in, tc.size)
		if tc.wantErr != nil {
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("ParseCoord(%q) err=%v want %v", tc.in, err, tc.wantErr)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseCoord(%q)=%+v,%v want %+v", tc.in, got, err, tc.want)
		}
	}
}

func TestFormatCoordRoundTrip(t *testing.T) {
	for _, p := range []gomoku.Position{{Row: 0, Col: 0}, {Row: 7, Col: 7}, {Row: 14, Col: 3}} {
		s := FormatCoord(p)
		back, err := ParseCoord(s, 15)
		if err != nil || back != p {
			t.Fatalf("%+v -> %q -> %+v (%v)", p, s, back, err)
		}
	}
	if got := MaxCoord(0); got != "O15" {
		t.Fatalf("MaxCoord default=%q", got)
	}
}

func TestLooksLikeCoord(t *testing.T) {
	for _, s := range []string{"H8", "z99", "a1"} {
		if !LooksLikeCoord(s) {
			t.Errorf("%q should look like a coordinate", s)
		}
	}
	for _, s := range []string{"방만들기", "H", "준비", "12"} {
		if LooksLikeCoord(s) {
			t.Errorf("%q should not look like a coordinate", s)
		}
	}
}
