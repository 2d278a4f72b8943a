package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/samber/lo"

	"github.com/domino14/tsume/shogi"
	"github.com/domino14/tsume/tsume"
)

// ShellCompleter completes command names, their options, and for `play`
// the legal moves in the current position.
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"load":  {Options: []string{"-file", "-id"}},
	"solve": {Options: []string{"-plies", "-timeout"}},
	"kif":   {Options: []string{"-enc", "-read"}},
	"help":  {Args: []string{"solve", "play"}},
}

var commandNames = []string{
	"load", "show", "solve", "moves", "play", "back", "next", "path",
	"cont", "reset", "kif", "help", "exit",
}

func (c *ShellCompleter) completions(cmdName, prefix string) []string {
	if cmdName == "play" || cmdName == "p" {
		if c.sc.root == nil {
			return nil
		}
		moves, err := tsume.LegalMoves(c.sc.root, c.sc.line)
		if err != nil {
			return nil
		}
		return lo.Map(moves, func(m shogi.Move, _ int) string { return m.String() })
	}
	metadata, exists := commandMetadata[cmdName]
	if !exists {
		return nil
	}
	if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
		return metadata.Options
	}
	return metadata.Args
}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		fields = strings.Fields(text)
	}
	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string
	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}
		completions = c.completions(fields[0], prefix)
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
