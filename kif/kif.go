// Package kif reads and writes solution records in KIF, the usual
// Japanese text format for shogi games and problems. Files may be UTF-8 or
// Shift_JIS.
package kif

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

var (
	ErrNotMate         = errors.New("only a mate can be written as a record")
	ErrBadKIF          = errors.New("malformed kif")
	ErrUnknownEncoding = errors.New("unknown kif encoding")
)

type Encoding int

const (
	UTF8 Encoding = iota
	ShiftJIS
)

func (e Encoding) String() string {
	if e == ShiftJIS {
		return "Shift_JIS"
	}
	return "UTF-8"
}

// ParseEncoding accepts "utf8" or "sjis" and a few common spellings of each.
func ParseEncoding(s string) (Encoding, error) {
	switch strings.ToLower(s) {
	case "", "utf8", "utf-8":
		return UTF8, nil
	case "sjis", "shift_jis", "shift-jis", "cp932":
		return ShiftJIS, nil
	}
	return UTF8, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

// Write records the mating line of res, played from root, as a KIF file
// with a board diagram of the starting position.
func Write(w io.Writer, root *shogi.Position, res *tsume.Result, enc Encoding) error {
	if res == nil || res.Outcome != tsume.Mate {
		return ErrNotMate
	}
	var out io.Writer = w
	var tw *transform.Writer
	if enc == ShiftJIS {
		tw = transform.NewWriter(w, japanese.ShiftJIS.NewEncoder())
		out = tw
	}
	bw := bufio.NewWriter(out)
	fmt.Fprintf(bw, "#KIF version=2.0 encoding=%s\n", enc)
	fmt.Fprintf(bw, "#SFEN %s\n", root.SFEN())
	bw.WriteString(Diagram(root))
	fmt.Fprintf(bw, "手数＝%d\n", len(res.Moves))
	bw.WriteString("手数----指手---------消費時間--\n")
	for i, m := range res.Moves {
		var prev shogi.Move
		if i > 0 {
			prev = res.Moves[i-1]
		}
		fmt.Fprintf(bw, "%4d %s\n", i+1, moveText(m, prev, root.SideToMove().After(i), i > 0))
	}
	fmt.Fprintf(bw, "%4d 詰み\n", len(res.Moves)+1)
	if err := bw.Flush(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}

// moveText is Move.KIF, with the destination replaced by 同 when it repeats
// the previous move's.
func moveText(m, prev shogi.Move, mover shogi.Side, hasPrev bool) string {
	s := m.KIF(mover)
	if !hasPrev || m.To != prev.To {
		return s
	}
	r := []rune(s)
	return "同　" + string(r[2:])
}

var bodNames = [shogi.NumKinds]string{
	"", "歩", "香", "桂", "銀", "金", "角", "飛", "玉", "と", "杏", "圭", "全", "", "馬", "龍",
}

var kanjiDigits = [...]string{"", "一", "二", "三", "四", "五", "六", "七", "八", "九"}

func kanjiCount(n int) string {
	switch {
	case n <= 1:
		return ""
	case n < 10:
		return kanjiDigits[n]
	case n == 10:
		return "十"
	}
	return "十" + kanjiDigits[n-10]
}

var handOrder = [...]shogi.PieceKind{
	shogi.Rook, shogi.Bishop, shogi.Gold, shogi.Silver, shogi.Knight, shogi.Lance, shogi.Pawn,
}

// Diagram draws p as a BOD board: the defender's hand is "the rest", the
// attacker's is listed below the board.
func Diagram(p *shogi.Position) string {
	var sb strings.Builder
	sb.WriteString("後手の持駒：残り全部\n")
	sb.WriteString("  ９ ８ ７ ６ ５ ４ ３ ２ １\n")
	sb.WriteString("+---------------------------+\n")
	for r := 0; r < shogi.BoardDim; r++ {
		sb.WriteString("|")
		for c := 0; c < shogi.BoardDim; c++ {
			pc := p.At(shogi.NewCoord(r, c))
			switch {
			case pc.IsEmpty():
				sb.WriteString(" ・")
			case pc.Side() == shogi.Defender:
				sb.WriteString("v" + bodNames[pc.Kind()])
			default:
				sb.WriteString(" " + bodNames[pc.Kind()])
			}
		}
		fmt.Fprintf(&sb, "|%s\n", kanjiDigits[r+1])
	}
	sb.WriteString("+---------------------------+\n")

	res := p.Reserve()
	var held []string
	for _, k := range handOrder {
		if n := res.Count(k); n > 0 {
			held = append(held, bodNames[k]+kanjiCount(n))
		}
	}
	if len(held) == 0 {
		sb.WriteString("先手の持駒：なし\n")
	} else {
		sb.WriteString("先手の持駒：" + strings.Join(held, "　") + "\n")
	}
	return sb.String()
}

// Decode returns the text of a KIF file, converting from Shift_JIS when it
// isn't valid UTF-8.
func Decode(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), japanese.ShiftJIS.NewDecoder()))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(decoded) {
		return "", fmt.Errorf("%w: not UTF-8 or Shift_JIS", ErrBadKIF)
	}
	return string(decoded), nil
}
