package shogi

import (
	"fmt"
	"strings"
)

func addText(lines []string, row int, hpad int, text string) {
	if row >= len(lines) {
		return
	}
	lines[row] = lines[row] + strings.Repeat(" ", hpad) + text
}

// ToDisplayText draws the board with files across the top and ranks down
// the right side. Defender pieces are lowercase.
func (p *Position) ToDisplayText() string {
	var sb strings.Builder
	sb.WriteString("   9  8  7  6  5  4  3  2  1\n")
	sb.WriteString("  ---------------------------\n")
	for r := 0; r < BoardDim; r++ {
		sb.WriteString(" |")
		for c := 0; c < BoardDim; c++ {
			s := p.board[NewCoord(r, c)].String()
			sb.WriteString(fmt.Sprintf("%2s ", s))
		}
		sb.WriteString(fmt.Sprintf("| %c\n", 'a'+r))
	}
	sb.WriteString("  ---------------------------")
	lines := strings.Split(sb.String(), "\n")
	addText(lines, 2, 3, "To move: "+p.toMove.String())
	addText(lines, 3, 3, "Reserve: "+p.reserve.String())
	addText(lines, 4, 3, fmt.Sprintf("Ply: %d", p.Ply()))
	if m, ok := p.LastMove(); ok {
		addText(lines, 5, 3, "Last move: "+m.String())
	}
	return strings.Join(lines, "\n") + "\n"
}
