package gomoku

// axes are the four line directions; each is scanned both ways.
var axes = [4][2]int{
	{0, 1},  // horizontal
	{1, 0},  // vertical
	{1, 1},  // diagonal \
	{1, -1}, // diagonal /
}

// CheckWin reports whether a stone of color c at pos completes a run of
// WinLength or more. The cell at pos is treated as holding c whether or not
// it has been written yet, so callers can test a placement before making it.
func CheckWin(board Board, pos *Position, c Color) bool {
	if board == nil || pos == nil || !c.Valid() {
		return false
	}
	if !board.contains(*pos) {
		return false
	}
	for _, ax := range axes {
		run := 1 + countRun(board, *pos, ax[0], ax[1], c) + countRun(board, *pos, -ax[0], -ax[1], c)
		if run >= WinLength {
			return true
		}
	}
	return false
}

// countRun counts contiguous c stones starting next to pos along (dr, dc).
func countRun(board Board, pos Position, dr, dc int, c Color) int {
	n := 0
	p := Position{Row: pos.Row + dr, Col: pos.Col + dc}
	for board.contains(p) && board.At(p) == c {
		n++
		p.Row += dr
		p.Col += dc
	}
	return n
}

// IsBoardFull is true iff every cell holds a stone. A nil or empty board is
// never full.
func IsBoardFull(board Board) bool {
	if board.Size() == 0 {
		return false
	}
	for _, row := range board {
		if len(row) == 0 {
			return false
		}
		for _, c := range row {
			if c == NoColor {
				return false
			}
		}
	}
	return true
}

// fillsBoard reports whether placing at the empty cell pos leaves no empty cell.
func fillsBoard(board Board, pos Position) bool {
	if board.Size() == 0 || !board.contains(pos) || board.At(pos) != NoColor {
		return false
	}
	return board.EmptyCells() == 1
}
