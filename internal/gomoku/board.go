package gomoku

import (
	"fmt"
	"time"
)

// Position is a board coordinate. Row 0 is the top edge.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) InBounds(size int) bool {
	return p.Row >= 0 && p.Col >= 0 && p.Row < size && p.Col < size
}

func (p Position) String() string { return fmt.Sprintf("(%d,%d)", p.Row, p.Col) }

// Board is a square grid of cells; NoColor marks an empty cell.
type Board [][]Color

// NewBoard returns an empty size x size board.
func NewBoard(size int) Board {
	if size <= 0 {
		size = DefaultBoardSize
	}
	b := make(Board, size)
	for i := range b {
		b[i] = make([]Color, size)
	}
	return b
}

// Size is the edge length; a nil board has size 0.
func (b Board) Size() int { return len(b) }

// At returns the cell at p, or NoColor when p is outside the board.
func (b Board) At(p Position) Color {
	if !b.contains(p) {
		return NoColor
	}
	return b[p.Row][p.Col]
}

// Set writes c at p. Out-of-range positions are ignored.
func (b Board) Set(p Position, c Color) {
	if !b.contains(p) {
		return
	}
	b[p.Row][p.Col] = c
}

func (b Board) contains(p Position) bool {
	if p.Row < 0 || p.Row >= len(b) {
		return false
	}
	return p.Col >= 0 && p.Col < len(b[p.Row])
}

// CountStones returns the number of non-empty cells.
func (b Board) CountStones() int {
	n := 0
	for _, row := range b {
		for _, c := range row {
			if c != NoColor {
				n++
			}
		}
	}
	return n
}

// EmptyCells returns the number of empty cells.
func (b Board) EmptyCells() int {
	n := 0
	for _, row := range b {
		for _, c := range row {
			if c == NoColor {
				n++
			}
		}
	}
	return n
}

func (b Board) Clone() Board {
	if b == nil {
		return nil
	}
	out := make(Board, len(b))
	for i, row := range b {
		out[i] = append([]Color(nil), row...)
	}
	return out
}

// Snapshot is the current board-and-turn state of a game.
type Snapshot struct {
	Board        Board     `json:"board"`
	CurrentTurn  Color     `json:"current_turn"`
	TotalMoves   int       `json:"total_moves"`
	Winner       Winner    `json:"winner"`
	SnapshotTime time.Time `json:"snapshot_time"`
}

// NewSnapshot returns an empty board with BLACK to move.
func NewSnapshot(size int, now time.Time) *Snapshot {
	return &Snapshot{
		Board:        NewBoard(size),
		CurrentTurn:  Black,
		TotalMoves:   0,
		Winner:       WinnerOngoing,
		SnapshotTime: now,
	}
}

func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Board = s.Board.Clone()
	return &cp
}

// place writes a stone and keeps TotalMoves in step with the board.
func (s *Snapshot) place(p Position, c Color) {
	s.Board.Set(p, c)
	s.TotalMoves++
}

// remove clears a stone and keeps TotalMoves in step with the board.
func (s *Snapshot) remove(p Position) {
	if s.Board.At(p) == NoColor {
		return
	}
	s.Board.Set(p, NoColor)
	if s.TotalMoves > 0 {
		s.TotalMoves--
	}
}
