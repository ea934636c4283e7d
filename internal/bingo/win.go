package bingo

// Pattern identifies a win rule a room can be configured with, and also
// names the specific shape a winning card matched. Rooms are configured
// with PatternLine, PatternCorners or PatternFull; a line win is reported
// back as the concrete MatchRow/MatchColumn/MatchDiagonal shape.
type Pattern string

const (
	// PatternLine wins on any full row, column or diagonal.
	PatternLine Pattern = "row"
	// PatternCorners wins on the four corner cells.
	PatternCorners Pattern = "corners"
	// PatternFull wins when every cell is marked.
	PatternFull Pattern = "full"

	// MatchRow, MatchColumn and MatchDiagonal are the concrete shapes a
	// PatternLine win resolves to.
	MatchRow      Pattern = "row"
	MatchColumn   Pattern = "col"
	MatchDiagonal Pattern = "diag"
)

// ParsePattern maps a wire string to a configurable pattern, defaulting
// to the line family for unknown or empty input.
func ParsePattern(s string) Pattern {
	switch Pattern(s) {
	case PatternCorners:
		return PatternCorners
	case PatternFull:
		return PatternFull
	default:
		return PatternLine
	}
}

// Cell is a grid coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Result reports the outcome of a win evaluation. Cells lists the
// participating coordinates of the first satisfied shape, in check order.
type Result struct {
	Won     bool
	Pattern Pattern
	Cells   []Cell
}

// Evaluate decides whether card satisfies pattern given the set of drawn
// numbers. The free cell always counts as marked. Evaluation is
// deterministic: rows 0..4, then columns 0..4, then the main diagonal,
// then the anti-diagonal.
func Evaluate(card Card, marked map[int]bool, pattern Pattern) Result {
	switch pattern {
	case PatternCorners:
		return evaluateCorners(card, marked)
	case PatternFull:
		return evaluateFull(card, marked)
	default:
		return evaluateLines(card, marked)
	}
}

func isMarked(card Card, marked map[int]bool, row, col int) bool {
	n := card[row][col]
	return n == FreeCell || marked[n]
}

func evaluateLines(card Card, marked map[int]bool) Result {
	for row := 0; row < GridSize; row++ {
		if cells, ok := lineCells(card, marked, func(i int) Cell { return Cell{row, i} }); ok {
			return Result{Won: true, Pattern: MatchRow, Cells: cells}
		}
	}
	for col := 0; col < GridSize; col++ {
		if cells, ok := lineCells(card, marked, func(i int) Cell { return Cell{i, col} }); ok {
			return Result{Won: true, Pattern: MatchColumn, Cells: cells}
		}
	}
	if cells, ok := lineCells(card, marked, func(i int) Cell { return Cell{i, i} }); ok {
		return Result{Won: true, Pattern: MatchDiagonal, Cells: cells}
	}
	if cells, ok := lineCells(card, marked, func(i int) Cell { return Cell{i, GridSize - 1 - i} }); ok {
		return Result{Won: true, Pattern: MatchDiagonal, Cells: cells}
	}
	return Result{}
}

// lineCells walks the five cells produced by at and returns them if all
// are marked.
func lineCells(card Card, marked map[int]bool, at func(i int) Cell) ([]Cell, bool) {
	cells := make([]Cell, 0, GridSize)
	for i := 0; i < GridSize; i++ {
		cell := at(i)
		if !isMarked(card, marked, cell.Row, cell.Col) {
			return nil, false
		}
		cells = append(cells, cell)
	}
	return cells, true
}

func evaluateCorners(card Card, marked map[int]bool) Result {
	corners := []Cell{{0, 0}, {0, GridSize - 1}, {GridSize - 1, 0}, {GridSize - 1, GridSize - 1}}
	for _, cell := range corners {
		if !isMarked(card, marked, cell.Row, cell.Col) {
			return Result{}
		}
	}
	return Result{Won: true, Pattern: PatternCorners, Cells: corners}
}

func evaluateFull(card Card, marked map[int]bool) Result {
	cells := make([]Cell, 0, GridSize*GridSize)
	for row := 0; row < GridSize; row++ {
		for col := 0; col < GridSize; col++ {
			if !isMarked(card, marked, row, col) {
				return Result{}
			}
			cells = append(cells, Cell{row, col})
		}
	}
	return Result{Won: true, Pattern: PatternFull, Cells: cells}
}

// MarkedSet builds the marked-number lookup for a draw history.
func MarkedSet(history []int) map[int]bool {
	marked := make(map[int]bool, len(history))
	for _, n := range history {
		marked[n] = true
	}
	return marked
}
