package explore

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/driftsec/tenantscan/internal/scan"
)

// ChooseContainer presents a numbered menu of resolved containers and
// reads the user's choice. A single container is selected without
// prompting; this mode exists only for the interactive browser — the
// enumerator processes all containers and never asks.
func ChooseContainer(containers []scan.Container, in io.Reader, out io.Writer) (scan.Container, error) {
	if len(containers) == 0 {
		return scan.Container{}, scan.ErrNoDrives
	}

	if len(containers) == 1 {
		return containers[0], nil
	}

	fmt.Fprintf(out, "\nAvailable drives:\n\n")

	for i, c := range containers {
		quota := "no quota limit"
		if c.Drive.QuotaTotal > 0 {
			quota = fmt.Sprintf("%s / %s used",
				humanSize(c.Drive.QuotaUsed), humanSize(c.Drive.QuotaTotal))
		}

		fmt.Fprintf(out, "  [%d] %s\n      kind: %s  id: %s\n      %s\n",
			i+1, c.Drive.Name, c.Kind, truncate(c.Drive.ID, 44), quota)
	}

	fmt.Fprintf(out, "\nSelect drive [1]: ")

	reader := bufio.NewReader(in)

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return scan.Container{}, fmt.Errorf("explore: reading selection: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return containers[0], nil
	}

	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(containers) {
		return scan.Container{}, fmt.Errorf("explore: invalid selection %q", line)
	}

	return containers[n-1], nil
}
