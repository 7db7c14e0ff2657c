// Package explore implements the interactive single-drive browser: a
// small REPL layered on the same drive and pagination primitives as
// the enumerator.
package explore

import (
	"errors"
	"strings"
)

// ErrUnbalancedQuotes is returned for command lines with an unclosed
// quote.
var ErrUnbalancedQuotes = errors.New("explore: unbalanced quotes in command")

// splitCommand tokenizes a command line, honoring single and double
// quotes so folder and file names with spaces work: cd "My Documents".
func splitCommand(line string) ([]string, error) {
	var (
		tokens  []string
		current strings.Builder
		quote   rune
		inToken bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inToken = true
		case r == ' ' || r == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()

				inToken = false
			}
		default:
			current.WriteRune(r)

			inToken = true
		}
	}

	if quote != 0 {
		return nil, ErrUnbalancedQuotes
	}

	if inToken {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// parseCommand splits a line into a lowercased command name and its
// argument (joined back together when the name spans several tokens).
func parseCommand(line string) (cmd, arg string, err error) {
	tokens, err := splitCommand(line)
	if err != nil {
		return "", "", err
	}

	if len(tokens) == 0 {
		return "", "", nil
	}

	return strings.ToLower(tokens[0]), strings.Join(tokens[1:], " "), nil
}
