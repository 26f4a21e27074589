package omokpresenter

import (
	"errors"
	"strconv"
	"strings"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
	"github.com/park285/Omok-KakaoTalk-bot/internal/render"
)

var (
	ErrCoordSyntax = errors.New("coordinate must be a column letter followed by a row number")
	ErrCoordRange  = errors.New("coordinate outside the board")
)

// ParseCoord reads "H8" style input: column letter A.. then row number 1..
// Case and surrounding spaces are ignored. size bounds the result; a size
// of 0 skips the bounds check.
func ParseCoord(s string, size int) (gomoku.Position, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) < 2 {
		return gomoku.Position{}, ErrCoordSyntax
	}
	c := s[0]
	if c < 'A' || c > 'Z' {
		return gomoku.Position{}, ErrCoordSyntax
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil || n < 1 {
		return gomoku.Position{}, ErrCoordSyntax
	}
	p := gomoku.Position{Row: n - 1, Col: int(c - 'A')}
	if size > 0 && !p.InBounds(size) {
		return p, ErrCoordRange
	}
	return p, nil
}

// LooksLikeCoord is a cheap check used to route a bare argument as a move.
func LooksLikeCoord(s string) bool {
	_, err := ParseCoord(s, 0)
	return err == nil
}

func FormatCoord(p gomoku.Position) string {
	return render.ColumnLabel(p.Col) + strconv.Itoa(p.Row+1)
}

// MaxCoord is the bottom-right coordinate of a size x size board.
func MaxCoord(size int) string {
	if size <= 0 {
		size = gomoku.DefaultBoardSize
	}
	return FormatCoord(gomoku.Position{Row: size - 1, Col: size - 1})
}
