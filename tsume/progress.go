package tsume

import (
	"context"
	"errors"
	"runtime"
	"time"
)

// DefaultCheckpointInterval is how many node visits pass between
// cancellation checks and progress reports.
const DefaultCheckpointInterval = 5000

var errNodeLimit = errors.New("node limit reached")

// Progress is reported at every checkpoint.
type Progress struct {
	Nodes   uint64
	Depth   int
	Elapsed time.Duration
}

type ProgressFunc func(Progress)

// visit counts a node. At checkpoints it observes ctx, reports progress and
// yields the processor. It returns an error when the search must stop.
func (s *Solver) visit(ctx context.Context) error {
	n := s.nodes.Add(1)
	if s.nodeLimit > 0 && n > s.nodeLimit {
		return errNodeLimit
	}
	if n%s.checkpointInterval != 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.progress != nil {
		s.progress(Progress{Nodes: n, Depth: s.currentDepth, Elapsed: time.Since(s.tstart)})
	}
	runtime.Gosched()
	return nil
}

// stopped reports whether err means the search was interrupted rather than
// failed.
func stopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, errNodeLimit)
}
