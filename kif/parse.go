package kif

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

var moveLineRe = regexp.MustCompile(`^\s*(\d+)\s+(\S+)`)
var fromSquareRe = regexp.MustCompile(`\(([1-9])([1-9])\)`)

var terminalWords = []string{"詰み", "投了", "中断", "不詰", "千日手", "持将棋", "反則", "切れ負け"}

// pieceNames maps every spelling seen in KIF move text, longest first.
var pieceNames = []struct {
	name string
	kind shogi.PieceKind
}{
	{"成香", shogi.ProLance}, {"成桂", shogi.ProKnight}, {"成銀", shogi.ProSilver},
	{"歩", shogi.Pawn}, {"香", shogi.Lance}, {"桂", shogi.Knight}, {"銀", shogi.Silver},
	{"金", shogi.Gold}, {"角", shogi.Bishop}, {"飛", shogi.Rook}, {"玉", shogi.King},
	{"王", shogi.King}, {"と", shogi.ProPawn}, {"杏", shogi.ProLance}, {"圭", shogi.ProKnight},
	{"全", shogi.ProSilver}, {"馬", shogi.Horse}, {"龍", shogi.Dragon}, {"竜", shogi.Dragon},
}

// ReadMoves reads a KIF record and resolves its moves against root,
// checking each one.
func ReadMoves(root *shogi.Position, r io.Reader) ([]shogi.Move, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := Decode(data)
	if err != nil {
		return nil, err
	}
	usis, err := ParseMoveList(text)
	if err != nil {
		return nil, err
	}
	return tsume.ParseLine(root, usis)
}

// ParseMoveList returns the moves of a KIF record in USI notation, stopping
// at the first terminal entry such as 詰み. Only the text is checked; the
// moves are not played.
func ParseMoveList(text string) ([]string, error) {
	var usis []string
	prevTo := ""
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "*") {
			continue
		}
		match := moveLineRe.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		tok := match[2]
		if isTerminal(tok) {
			break
		}
		usi, to, err := parseMove(tok, prevTo)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		usis = append(usis, usi)
		prevTo = to
	}
	return usis, nil
}

func isTerminal(tok string) bool {
	for _, w := range terminalWords {
		if strings.HasPrefix(tok, w) {
			return true
		}
	}
	return false
}

func parseMove(tok, prevTo string) (usi, to string, err error) {
	r := []rune(tok)
	if r[0] == '同' {
		if prevTo == "" {
			return "", "", fmt.Errorf("%w: %s with no previous move", ErrBadKIF, tok)
		}
		to = prevTo
		r = []rune(strings.TrimLeft(string(r[1:]), " 　"))
	} else {
		if len(r) < 2 {
			return "", "", fmt.Errorf("%w: %s", ErrBadKIF, tok)
		}
		file, ok := fileDigit(r[0])
		rank, ok2 := rankDigit(r[1])
		if !ok || !ok2 {
			return "", "", fmt.Errorf("%w: bad square in %s", ErrBadKIF, tok)
		}
		to = fmt.Sprintf("%d%c", file, 'a'+rank-1)
		r = r[2:]
	}

	rest := string(r)
	from := ""
	if m := fromSquareRe.FindStringSubmatch(rest); m != nil {
		from = fmt.Sprintf("%s%c", m[1], 'a'+(m[2][0]-'1'))
		rest = fromSquareRe.ReplaceAllString(rest, "")
	}
	kind, rest, ok := cutPiece(rest)
	if !ok {
		return "", "", fmt.Errorf("%w: unknown piece in %s", ErrBadKIF, tok)
	}

	promote := false
	switch rest {
	case "打":
		if from != "" || !kind.IsHandKind() {
			return "", "", fmt.Errorf("%w: bad drop %s", ErrBadKIF, tok)
		}
		return kind.String() + "*" + to, to, nil
	case "成":
		promote = true
	case "不成", "":
	default:
		return "", "", fmt.Errorf("%w: %s", ErrBadKIF, tok)
	}
	if from == "" {
		return "", "", fmt.Errorf("%w: no origin square in %s", ErrBadKIF, tok)
	}
	usi = from + to
	if promote {
		usi += "+"
	}
	return usi, to, nil
}

func cutPiece(s string) (shogi.PieceKind, string, bool) {
	for _, pn := range pieceNames {
		if rest, ok := strings.CutPrefix(s, pn.name); ok {
			return pn.kind, rest, true
		}
	}
	return shogi.NoKind, s, false
}

func fileDigit(r rune) (int, bool) {
	switch {
	case r >= '１' && r <= '９':
		return int(r-'１') + 1, true
	case r >= '1' && r <= '9':
		return int(r - '0'), true
	}
	return 0, false
}

func rankDigit(r rune) (int, bool) {
	for i := 1; i < len(kanjiDigits); i++ {
		if string(r) == kanjiDigits[i] {
			return i, true
		}
	}
	return 0, false
}
