package explore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    []string
		wantErr bool
	}{
		{name: "plain", line: "cd Documents", want: []string{"cd", "Documents"}},
		{name: "double quotes", line: `cd "My Documents"`, want: []string{"cd", "My Documents"}},
		{name: "single quotes", line: `download 'Q3 report.xlsx'`, want: []string{"download", "Q3 report.xlsx"}},
		{name: "collapsed whitespace", line: "  dir   ", want: []string{"dir"}},
		{name: "tabs", line: "cd\tProjects", want: []string{"cd", "Projects"}},
		{name: "empty", line: "", want: nil},
		{name: "quote inside token", line: `cd folder" with"spaces`, want: []string{"cd", "folder withspaces"}},
		{name: "unbalanced", line: `cd "My Documents`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := splitCommand(tc.line)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnbalancedQuotes)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseCommand(t *testing.T) {
	cmd, arg, err := parseCommand(`CD "My Documents"`)
	require.NoError(t, err)
	assert.Equal(t, "cd", cmd)
	assert.Equal(t, "My Documents", arg)

	cmd, arg, err = parseCommand("download report final.docx")
	require.NoError(t, err)
	assert.Equal(t, "download", cmd)
	assert.Equal(t, "report final.docx", arg)

	cmd, arg, err = parseCommand("")
	require.NoError(t, err)
	assert.Empty(t, cmd)
	assert.Empty(t, arg)
}
