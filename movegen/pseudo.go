package movegen

import "github.com/domino14/tsume/shogi"

// genBoardMoves appends the pseudo-legal board moves for side s. Captures of
// a king are never generated.
func genBoardMoves(p *shogi.Position, s shogi.Side, buf []shogi.Move) []shogi.Move {
	for _, from := range p.Pieces(s) {
		k := p.At(from).Kind()
		steps, slides := k.Steps(), k.Slides()
		for rel := 0; rel < 8; rel++ {
			bit := uint8(1) << rel
			if steps&bit == 0 && slides&bit == 0 {
				continue
			}
			dr, dc := shogi.Oriented(shogi.Dir8[rel], s)
			for dist := 1; ; dist++ {
				to, ok := from.Offset(dr*dist, dc*dist)
				if !ok {
					break
				}
				target := p.At(to)
				if !target.IsEmpty() && (target.Side() == s || target.Kind() == shogi.King) {
					break
				}
				buf = addBoardMove(buf, from, to, k, target.Kind(), s)
				if !target.IsEmpty() || slides&bit == 0 {
					break
				}
			}
		}
		if k == shogi.Knight {
			for _, j := range shogi.KnightJumps {
				dr, dc := shogi.Oriented(j, s)
				to, ok := from.Offset(dr, dc)
				if !ok {
					continue
				}
				target := p.At(to)
				if !target.IsEmpty() && (target.Side() == s || target.Kind() == shogi.King) {
					continue
				}
				buf = addBoardMove(buf, from, to, k, target.Kind(), s)
			}
		}
	}
	return buf
}

// addBoardMove appends the move and, when it starts or ends in the
// promotion zone, its promoted variant. A piece with no further move from
// to is only emitted promoted.
func addBoardMove(buf []shogi.Move, from, to shogi.Coord, k, captured shogi.PieceKind, s shogi.Side) []shogi.Move {
	m := shogi.Move{From: from, To: to, Piece: k, Captured: captured}
	if k.CanPromote() && (shogi.PromotionZone(from, s) || shogi.PromotionZone(to, s)) {
		pm := m
		pm.Promote = true
		buf = append(buf, pm)
		if deadEnd(k, to, s) {
			return buf
		}
	}
	return append(buf, m)
}

// deadEnd reports whether an unpromoted k on sq could never move again.
func deadEnd(k shogi.PieceKind, sq shogi.Coord, s shogi.Side) bool {
	switch k {
	case shogi.Pawn, shogi.Lance:
		return shogi.RowsToLastRank(sq, s) == 0
	case shogi.Knight:
		return shogi.RowsToLastRank(sq, s) <= 1
	}
	return false
}

// genDrops appends the attacker's legal drops: any empty square, except
// dead-end squares for pawns, lances and knights and files that already hold
// an unpromoted attacker pawn (nifu).
func genDrops(p *shogi.Position, buf []shogi.Move) []shogi.Move {
	r := p.Reserve()
	if r.Total() == 0 {
		return buf
	}
	var pawnOnFile [shogi.BoardDim]bool
	if r.Count(shogi.Pawn) > 0 {
		for col := 0; col < shogi.BoardDim; col++ {
			pawnOnFile[col] = p.HasUnpromotedPawnOnFile(shogi.Attacker, col)
		}
	}
	for k := shogi.Pawn; k <= shogi.Rook; k++ {
		if r.Count(k) == 0 {
			continue
		}
		for sq := shogi.Coord(0); sq < shogi.NumSquares; sq++ {
			if !p.At(sq).IsEmpty() || deadEnd(k, sq, shogi.Attacker) {
				continue
			}
			if k == shogi.Pawn && pawnOnFile[sq.Col()] {
				continue
			}
			buf = append(buf, shogi.NewDrop(k, sq))
		}
	}
	return buf
}
