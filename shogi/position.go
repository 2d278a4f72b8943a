package shogi

import "fmt"

// maxPiecesPerSide bounds the per-side piece lists. A full set has 40 pieces.
const maxPiecesPerSide = 40

// Hasher maintains a position key. The Position calls AddMove from Play;
// handBefore is the attacker's reserve count of the kind that changed (the
// dropped kind, or the demoted captured kind) before the move.
type Hasher interface {
	Hash(p *Position) uint64
	AddMove(key uint64, m Move, mover Side, handBefore int) uint64
}

type undoEntry struct {
	move    Move
	capIdx  int8
	prevKey uint64
}

// Position is a mate-puzzle position: the board, per-side piece lists, the
// attacker's reserve and the side to move. Searching uses Play and Unplay in
// strict LIFO order; Copy gives an independent value for anything else.
type Position struct {
	board   [NumSquares]Piece
	lists   [2][maxPiecesPerSide]Coord
	counts  [2]int
	listIdx [NumSquares]int8
	// kings[Attacker] is NoCoord when the attacker has no king.
	kings   [2]Coord
	reserve Reserve
	toMove  Side

	key    uint64
	hasher Hasher
	undo   []undoEntry
}

func newEmptyPosition() *Position {
	p := &Position{}
	p.kings = [2]Coord{NoCoord, NoCoord}
	for i := range p.listIdx {
		p.listIdx[i] = -1
	}
	return p
}

// At returns the piece on c.
func (p *Position) At(c Coord) Piece {
	return p.board[c]
}

func (p *Position) SideToMove() Side {
	return p.toMove
}

func (p *Position) Reserve() Reserve {
	return p.reserve
}

// KingSquare returns the king square for s, or NoCoord.
func (p *Position) KingSquare(s Side) Coord {
	return p.kings[s]
}

// Pieces returns the squares holding pieces of side s. The slice aliases
// internal storage and is only valid until the next Play or Unplay.
func (p *Position) Pieces(s Side) []Coord {
	return p.lists[s][:p.counts[s]]
}

// Key returns the current position key, or 0 if no hasher is set.
func (p *Position) Key() uint64 {
	return p.key
}

// Ply is the number of moves played since the position was created.
func (p *Position) Ply() int {
	return len(p.undo)
}

// SetHasher installs a hasher and recomputes the key from scratch.
func (p *Position) SetHasher(h Hasher) {
	p.hasher = h
	if h == nil {
		p.key = 0
		return
	}
	p.key = h.Hash(p)
}

// Copy returns a deep copy of the position, sharing only the hasher.
func (p *Position) Copy() *Position {
	cp := *p
	cp.undo = make([]undoEntry, len(p.undo), len(p.undo)+16)
	copy(cp.undo, p.undo)
	return &cp
}

func (p *Position) addToList(s Side, c Coord) {
	n := p.counts[s]
	if n >= maxPiecesPerSide {
		panic("shogi: piece list overflow")
	}
	p.lists[s][n] = c
	p.listIdx[c] = int8(n)
	p.counts[s]++
}

// removeFromList swaps c's entry with the last one; restoreToList undoes
// exactly that.
func (p *Position) removeFromList(s Side, c Coord) int8 {
	idx := p.listIdx[c]
	last := p.counts[s] - 1
	lastSq := p.lists[s][last]
	p.lists[s][idx] = lastSq
	p.listIdx[lastSq] = idx
	p.counts[s]--
	p.listIdx[c] = -1
	return idx
}

func (p *Position) restoreToList(s Side, c Coord, idx int8) {
	n := p.counts[s]
	// When c was last in the list nothing was swapped in, and the slot may
	// since have been reused and freed by a drop.
	if int(idx) != n {
		moved := p.lists[s][idx]
		p.lists[s][n] = moved
		p.listIdx[moved] = int8(n)
	}
	p.lists[s][idx] = c
	p.listIdx[c] = idx
	p.counts[s]++
}

// Validate cross-checks the board against the piece lists, their index map
// and the king squares.
func (p *Position) Validate() error {
	onBoard := 0
	for c := Coord(0); c < NumSquares; c++ {
		if !p.board[c].IsEmpty() {
			onBoard++
		}
	}
	if n := p.counts[Attacker] + p.counts[Defender]; n != onBoard {
		return fmt.Errorf("%d pieces listed, %d on the board", n, onBoard)
	}
	for _, s := range []Side{Attacker, Defender} {
		for i := 0; i < p.counts[s]; i++ {
			c := p.lists[s][i]
			pc := p.board[c]
			if pc.IsEmpty() || pc.Side() != s {
				return fmt.Errorf("%s list[%d]=%s holds %s", s, i, c, pc)
			}
			if int(p.listIdx[c]) != i {
				return fmt.Errorf("%s list[%d]=%s but its index is %d", s, i, c, p.listIdx[c])
			}
			if pc.Kind() == King && p.kings[s] != c {
				return fmt.Errorf("%s king on %s, recorded on %s", s, c, p.kings[s])
			}
		}
	}
	if k := p.kings[Defender]; !k.Valid() || p.board[k] != NewPiece(King, Defender) {
		return fmt.Errorf("defender king recorded on %s", k)
	}
	return nil
}

func invariant(format string, args ...any) {
	panic(fmt.Sprintf("shogi: corrupted position: "+format, args...))
}

// Play makes move m for the side to move. It panics if m does not match the
// board, since that can only happen with a corrupted position or a move
// generated for a different position.
func (p *Position) Play(m Move) {
	mover := p.toMove
	opp := mover.Opponent()
	u := undoEntry{move: m, capIdx: -1, prevKey: p.key}
	handBefore := 0

	if m.IsDrop() {
		if mover != Attacker {
			invariant("defender drop %s", m)
		}
		if !p.board[m.To].IsEmpty() {
			invariant("drop %s onto occupied square", m)
		}
		if !m.Piece.IsHandKind() || p.reserve[m.Piece] == 0 {
			invariant("drop %s without a piece in reserve", m)
		}
		handBefore = int(p.reserve[m.Piece])
		p.reserve[m.Piece]--
		p.board[m.To] = NewPiece(m.Piece, mover)
		p.addToList(mover, m.To)
	} else {
		pc := p.board[m.From]
		if pc.IsEmpty() || pc.Side() != mover || pc.Kind() != m.Piece {
			invariant("move %s expects %s %s on %s, found %s", m, mover, m.Piece, m.From, pc)
		}
		target := p.board[m.To]
		if target.Kind() != m.Captured || (!target.IsEmpty() && target.Side() == mover) {
			invariant("move %s expects capture %q on %s, found %s", m, m.Captured.String(), m.To, target)
		}
		if m.Promote && !m.Piece.CanPromote() {
			invariant("move %s promotes %s", m, m.Piece)
		}
		if !target.IsEmpty() {
			if target.Kind() == King {
				invariant("move %s captures a king", m)
			}
			u.capIdx = p.removeFromList(opp, m.To)
			if mover == Attacker {
				k := m.Captured.Demote()
				handBefore = int(p.reserve[k])
				p.reserve[k]++
			}
		}
		p.board[m.From] = NoPiece
		p.board[m.To] = NewPiece(m.Result(), mover)
		idx := p.listIdx[m.From]
		p.lists[mover][idx] = m.To
		p.listIdx[m.To] = idx
		p.listIdx[m.From] = -1
		if m.Piece == King {
			p.kings[mover] = m.To
		}
	}
	if p.hasher != nil {
		p.key = p.hasher.AddMove(p.key, m, mover, handBefore)
	}
	p.toMove = opp
	p.undo = append(p.undo, u)
}

// Unplay takes back the last move made with Play.
func (p *Position) Unplay() {
	n := len(p.undo)
	if n == 0 {
		invariant("unplay with empty history")
	}
	u := p.undo[n-1]
	p.undo = p.undo[:n-1]
	m := u.move
	mover := p.toMove.Opponent()
	opp := p.toMove

	if m.IsDrop() {
		last := p.counts[mover] - 1
		if last < 0 || p.lists[mover][last] != m.To {
			invariant("unplay drop %s out of order", m)
		}
		p.counts[mover]--
		p.listIdx[m.To] = -1
		p.board[m.To] = NoPiece
		p.reserve[m.Piece]++
	} else {
		idx := p.listIdx[m.To]
		p.lists[mover][idx] = m.From
		p.listIdx[m.From] = idx
		p.listIdx[m.To] = -1
		p.board[m.From] = NewPiece(m.Piece, mover)
		if m.Piece == King {
			p.kings[mover] = m.From
		}
		if m.IsCapture() {
			p.board[m.To] = NewPiece(m.Captured, opp)
			p.restoreToList(opp, m.To, u.capIdx)
			if mover == Attacker {
				p.reserve[m.Captured.Demote()]--
			}
		} else {
			p.board[m.To] = NoPiece
		}
	}
	p.toMove = mover
	p.key = u.prevKey
}

// LastMove returns the most recent move and whether there is one.
func (p *Position) LastMove() (Move, bool) {
	if len(p.undo) == 0 {
		return Move{}, false
	}
	return p.undo[len(p.undo)-1].move, true
}

// Attacked reports whether any piece of side by attacks sq.
func (p *Position) Attacked(sq Coord, by Side) bool {
	for a := 0; a < 8; a++ {
		for dist := 1; ; dist++ {
			t, ok := sq.Offset(Dir8[a][0]*dist, Dir8[a][1]*dist)
			if !ok {
				break
			}
			pc := p.board[t]
			if pc.IsEmpty() {
				continue
			}
			if pc.Side() == by {
				// The attacker would move from t toward sq, the opposite of a.
				rel := OrientDir(7-a, by)
				bit := uint8(1) << rel
				if dist == 1 && pc.Kind().Steps()&bit != 0 {
					return true
				}
				if pc.Kind().Slides()&bit != 0 {
					return true
				}
			}
			break
		}
	}
	for _, j := range KnightJumps {
		dr, dc := Oriented(j, by)
		t, ok := sq.Offset(-dr, -dc)
		if ok && p.board[t] == NewPiece(Knight, by) {
			return true
		}
	}
	return false
}

// AttacksFrom reports whether the piece on from attacks target directly,
// looking through no pieces.
func (p *Position) AttacksFrom(from, target Coord) bool {
	pc := p.board[from]
	if pc.IsEmpty() || from == target {
		return false
	}
	s := pc.Side()
	k := pc.Kind()
	dr, dc := target.Row()-from.Row(), target.Col()-from.Col()
	if k == Knight {
		for _, j := range KnightJumps {
			jr, jc := Oriented(j, s)
			if jr == dr && jc == dc {
				return true
			}
		}
		return false
	}
	dist := max(abs(dr), abs(dc))
	if dr != 0 && dc != 0 && abs(dr) != abs(dc) {
		return false
	}
	ur, uc := sign(dr), sign(dc)
	a := -1
	for i, d := range Dir8 {
		if d[0] == ur && d[1] == uc {
			a = i
			break
		}
	}
	bit := uint8(1) << OrientDir(a, s)
	if dist == 1 && k.Steps()&bit != 0 {
		return true
	}
	if k.Slides()&bit == 0 {
		return false
	}
	for i := 1; i < dist; i++ {
		t, _ := from.Offset(ur*i, uc*i)
		if !p.board[t].IsEmpty() {
			return false
		}
	}
	return true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

// InCheck reports whether side s has a king that is attacked.
func (p *Position) InCheck(s Side) bool {
	k := p.kings[s]
	if k == NoCoord {
		return false
	}
	return p.Attacked(k, s.Opponent())
}

// HasUnpromotedPawnOnFile reports whether s has a pawn on column col.
func (p *Position) HasUnpromotedPawnOnFile(s Side, col int) bool {
	pawn := NewPiece(Pawn, s)
	for r := 0; r < BoardDim; r++ {
		if p.board[NewCoord(r, col)] == pawn {
			return true
		}
	}
	return false
}
