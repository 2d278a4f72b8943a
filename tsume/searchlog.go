package tsume

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/tsume/shogi"
)

// IterationLog is what the log stream records for each completed depth.
type IterationLog struct {
	Depth     int      `yaml:"depth"`
	Nodes     uint64   `yaml:"nodes"`
	ElapsedMs int64    `yaml:"elapsed_ms"`
	Mate      bool     `yaml:"mate"`
	PV        []string `yaml:"pv,omitempty"`
}

// logIteration appends one iteration to the log stream as a YAML list item,
// so the stream as a whole parses as a list.
func (s *Solver) logIteration(depth int, line []shogi.Move) {
	if s.logStream == nil {
		return
	}
	entry := IterationLog{
		Depth:     depth,
		Nodes:     s.nodes.Load(),
		ElapsedMs: time.Since(s.tstart).Milliseconds(),
		Mate:      line != nil,
		PV:        lo.Map(line, func(m shogi.Move, _ int) string { return m.String() }),
	}
	out, err := yaml.Marshal([]IterationLog{entry})
	if err != nil {
		log.Err(err).Msg("error-marshaling-logs")
		return
	}
	if _, err := s.logStream.Write(out); err != nil {
		log.Err(err).Msg("error-writing-logs")
	}
}
