package tsume

import (
	"context"

	"github.com/domino14/tsume/movegen"
	"github.com/domino14/tsume/shogi"
)

// Paths are move lines from the node's position. An OR node returns the
// shortest attacker line that forces mate within remaining plies, or nil. An
// AND node returns the line the defender resists longest with, or nil if
// some reply escapes. A non-nil empty line from an AND node means the
// defender is mated.

func prepend(m shogi.Move, line []shogi.Move) []shogi.Move {
	out := make([]shogi.Move, 0, len(line)+1)
	out = append(out, m)
	return append(out, line...)
}

// orNode searches the attacker's checks. Once a line no longer than beta is
// found the parent cannot use anything better, so the search stops there.
func (s *Solver) orNode(ctx context.Context, ply, remaining, beta int) ([]shogi.Move, error) {
	if err := s.visit(ctx); err != nil {
		return nil, err
	}
	if remaining < 1 {
		return nil, nil
	}
	pos := s.pos
	key := pos.Key()

	var hashMove shogi.Move
	haveHashMove := false
	if s.transpositionTableOptim {
		e := s.ttable.lookup(key)
		if e.valid() {
			switch e.flag {
			case TTExact:
				if len(e.path) <= remaining {
					return e.path, nil
				}
				return nil, nil
			case TTLower:
				if int(e.depth) >= remaining {
					return nil, nil
				}
			case TTUpper:
				if len(e.path) <= beta && len(e.path) <= remaining {
					return e.path, nil
				}
			}
			hashMove, haveHashMove = e.hashMove()
		}
	}

	moves := s.gen.GenChecks(pos, s.plies[ply][:0])
	s.plies[ply] = moves
	if haveHashMove {
		movegen.MoveToFront(moves, hashMove)
	}

	var best []shogi.Move
	limit := remaining
	for _, m := range moves {
		if limit < 1 {
			break
		}
		pos.Play(m)
		child, err := s.andNode(ctx, ply+1, limit-1, m)
		pos.Unplay()
		if err != nil {
			return nil, err
		}
		if child == nil {
			continue
		}
		best = prepend(m, child)
		if len(best) <= beta {
			flag := uint8(TTUpper)
			if len(best) == 1 {
				flag = TTExact
			}
			s.storeEntry(key, best, remaining, flag)
			return best, nil
		}
		// only strictly shorter mates are of interest now
		limit = len(best) - 2
	}
	if best == nil {
		s.storeEntry(key, nil, remaining, TTLower)
	} else {
		s.storeEntry(key, best, remaining, TTExact)
	}
	return best, nil
}

// andNode searches the defender's evasions after the attacker played last.
// Terminal nodes are never stored: whether they count as mate depends on
// last.
func (s *Solver) andNode(ctx context.Context, ply, remaining int, last shogi.Move) ([]shogi.Move, error) {
	if err := s.visit(ctx); err != nil {
		return nil, err
	}
	pos := s.pos
	key := pos.Key()

	var hashMove shogi.Move
	haveHashMove := false
	if s.transpositionTableOptim {
		e := s.ttable.lookup(key)
		if e.valid() {
			switch e.flag {
			case TTExact:
				if len(e.path) <= remaining {
					return e.path, nil
				}
				return nil, nil
			case TTLower:
				if int(e.depth) >= remaining {
					return nil, nil
				}
			}
			hashMove, haveHashMove = e.hashMove()
		}
	}

	moves := s.gen.GenEvasions(pos, s.plies[ply][:0])
	s.plies[ply] = moves
	if len(moves) == 0 {
		if last.IsPawnDrop() {
			// mate by pawn drop is illegal
			return nil, nil
		}
		return []shogi.Move{}, nil
	}
	if remaining < 2 {
		return nil, nil
	}
	if haveHashMove {
		movegen.MoveToFront(moves, hashMove)
	}

	var longest []shogi.Move
	for _, m := range moves {
		beta := 0
		if longest != nil {
			beta = len(longest) - 1
		}
		pos.Play(m)
		child, err := s.orNode(ctx, ply+1, remaining-1, beta)
		pos.Unplay()
		if err != nil {
			return nil, err
		}
		if child == nil {
			s.storeEntry(key, nil, remaining, TTLower)
			return nil, nil
		}
		if longest == nil || len(child)+1 > len(longest) {
			longest = prepend(m, child)
		}
	}
	s.storeEntry(key, longest, remaining, TTExact)
	return longest, nil
}

func (s *Solver) storeEntry(key uint64, path []shogi.Move, depth int, flag uint8) {
	if !s.transpositionTableOptim {
		return
	}
	s.ttable.store(key, TableEntry{path: path, depth: int16(depth), flag: flag})
}
