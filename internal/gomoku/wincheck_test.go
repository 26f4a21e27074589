package gomoku

import (
	"math/rand"
	"testing"
)

func boardWith(size int, stones map[Position]Color) Board {
	b := NewBoard(size)
	for p, c := range stones {
		b.Set(p, c)
	}
	return b
}

func line(start Position, dr, dc, n int, c Color) map[Position]Color {
	out := make(map[Position]Color, n)
	for i := 0; i < n; i++ {
		out[Position{Row: start.Row + dr*i, Col: start.Col + dc*i}] = c
	}
	return out
}

func TestCheckWin_Axes(t *testing.T) {
	cases := []struct {
		name   string
		stones map[Position]Color
		probe  Position
		want   bool
	}{
		{"horizontal five", line(Position{7, 3}, 0, 1, 5, Black), Position{7, 5}, true},
		{"vertical five", line(Position{2, 9}, 1, 0, 5, White), Position{6, 9}, true},
		{"diagonal five", line(Position{0, 0}, 1, 1, 5, Black), Position{0, 0}, true},
		{"anti diagonal five", line(Position{4, 10}, 1, -1, 5, Black), Position{8, 6}, true},
		{"overline six", line(Position{7, 0}, 0, 1, 6, Black), Position{7, 2}, true},
		{"four only", line(Position{7, 3}, 0, 1, 4, Black), Position{7, 4}, false},
		{"right edge", line(Position{14, 10}, 0, 1, 5, White), Position{14, 14}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := boardWith(15, tc.stones)
			c := b.At(tc.probe)
			if got := CheckWin(b, &tc.probe, c); got != tc.want {
				t.Fatalf("CheckWin(%v) = %v, want %v", tc.probe, got, tc.want)
			}
		})
	}
}

func TestCheckWin_BrokenByOpponent(t *testing.T) {
	stones := line(Position{7, 3}, 0, 1, 6, Black)
	stones[Position{7, 5}] = White
	b := boardWith(15, stones)
	p := Position{7, 6}
	if CheckWin(b, &p, Black) {
		t.Fatalf("run interrupted by WHITE should not win")
	}
}

func TestCheckWin_UnplacedProbe(t *testing.T) {
	b := boardWith(15, line(Position{7, 5}, 0, 1, 4, Black))
	p := Position{7, 9}
	if !CheckWin(b, &p, Black) {
		t.Fatalf("placing the fifth stone should win before it is written")
	}
	if b.At(p) != NoColor {
		t.Fatalf("CheckWin must not write the board")
	}
	if CheckWin(b, &p, White) {
		t.Fatalf("WHITE at (7,9) does not complete a BLACK line")
	}
}

func TestCheckWin_Degenerate(t *testing.T) {
	p := Position{0, 0}
	if CheckWin(nil, &p, Black) {
		t.Fatalf("nil board must not win")
	}
	if CheckWin(NewBoard(15), nil, Black) {
		t.Fatalf("nil position must not win")
	}
	out := Position{-1, 20}
	if CheckWin(NewBoard(15), &out, Black) {
		t.Fatalf("out-of-bounds position must not win")
	}
	if CheckWin(NewBoard(15), &p, NoColor) {
		t.Fatalf("empty color must not win")
	}
}

func TestIsBoardFull(t *testing.T) {
	if IsBoardFull(nil) {
		t.Fatalf("nil board is not full")
	}
	b := NewBoard(3)
	if IsBoardFull(b) {
		t.Fatalf("empty board is not full")
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			b.Set(Position{r, c}, Color(1+(r+c)%2))
		}
	}
	if !IsBoardFull(b) {
		t.Fatalf("filled board should be full")
	}
	b.Set(Position{1, 1}, NoColor)
	if IsBoardFull(b) {
		t.Fatalf("one empty cell left, not full")
	}
}

// longestRun is a brute-force reference: walk each axis through p and
// measure the contiguous c segment containing p.
func longestRun(b Board, p Position, c Color) int {
	best := 0
	for _, ax := range axes {
		r, col := p.Row, p.Col
		for {
			nr, nc := r-ax[0], col-ax[1]
			q := Position{nr, nc}
			if !q.InBounds(b.Size()) || b.At(q) != c {
				break
			}
			r, col = nr, nc
		}
		n := 0
		for q := (Position{r, col}); q.InBounds(b.Size()) && (b.At(q) == c || q == p); q = (Position{q.Row + ax[0], q.Col + ax[1]}) {
			n++
		}
		if n > best {
			best = n
		}
	}
	return best
}

func TestCheckWin_MatchesReference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		b := NewBoard(9)
		for r := 0; r < 9; r++ {
			for c := 0; c < 9; c++ {
				b[r][c] = Color(rng.Intn(3))
			}
		}
		p := Position{rng.Intn(9), rng.Intn(9)}
		b.Set(p, Black)
		want := longestRun(b, p, Black) >= WinLength
		if got := CheckWin(b, &p, Black); got != want {
			t.Fatalf("iteration %d: CheckWin(%v)=%v, reference=%v", i, p, got, want)
		}
	}
}
