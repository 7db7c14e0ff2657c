package explore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/driftsec/tenantscan/internal/graph"
)

// API is the slice of the Graph client the browser needs.
type API interface {
	ListChildren(ctx context.Context, driveID, itemID string) ([]graph.Item, error)
	DownloadItem(ctx context.Context, driveID, itemID string, w io.Writer) (int64, error)
}

// crumb is one level of the navigation stack: the folder's item ID
// ("" for the drive root) and its display path.
type crumb struct {
	itemID string
	path   string
}

// Session is an interactive browsing session against one drive.
// Unlike the enumerator, navigation tracks the real ancestor chain so
// `cd ..` returns to the true parent folder, not the root.
type Session struct {
	api     API
	driveID string
	cwd     crumb
	stack   []crumb
	in      *bufio.Scanner
	out     io.Writer
	logger  *slog.Logger
}

// NewSession creates a session rooted at the given drive.
func NewSession(api API, driveID string, in io.Reader, out io.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		api:     api,
		driveID: driveID,
		cwd:     crumb{itemID: "", path: "/"},
		in:      bufio.NewScanner(in),
		out:     out,
		logger:  logger,
	}
}

// Run reads and dispatches commands until exit or EOF.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprintf(s.out, "Connected to drive %s\nType 'help' for commands.\n\n", s.driveID)

	for {
		fmt.Fprintf(s.out, "explorer:%s> ", s.cwd.path)

		if !s.in.Scan() {
			if err := s.in.Err(); err != nil {
				return fmt.Errorf("explore: reading command: %w", err)
			}

			return nil // EOF
		}

		line := strings.TrimSpace(s.in.Text())
		if line == "" {
			continue
		}

		cmd, arg, err := parseCommand(line)
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
			continue
		}

		switch cmd {
		case "dir", "ls":
			s.cmdDir(ctx)
		case "cd":
			if arg == "" {
				fmt.Fprintln(s.out, "usage: cd <folder> | cd .. | cd /")
				continue
			}

			s.cmdCd(ctx, arg)
		case "download", "get":
			if arg == "" {
				fmt.Fprintln(s.out, "usage: download <file>")
				continue
			}

			s.cmdDownload(ctx, arg)
		case "pwd":
			fmt.Fprintf(s.out, "%s\ndrive: %s\n", s.cwd.path, s.driveID)
		case "help":
			s.cmdHelp()
		case "exit", "quit":
			return nil
		default:
			fmt.Fprintf(s.out, "unknown command: %s\n", cmd)
		}
	}
}

// cmdDir lists the current folder.
func (s *Session) cmdDir(ctx context.Context) {
	items, err := s.api.ListChildren(ctx, s.driveID, s.cwd.itemID)
	if err != nil {
		// Partial listings still display whatever arrived.
		fmt.Fprintf(s.out, "listing incomplete: %v\n", err)
	}

	if len(items) == 0 {
		fmt.Fprintln(s.out, "(empty folder)")
		return
	}

	fmt.Fprintf(s.out, "\n%s — %d items\n\n", s.cwd.path, len(items))
	fmt.Fprintf(s.out, "%-6s %-50s %10s  %s\n", "TYPE", "NAME", "SIZE", "MODIFIED")
	fmt.Fprintln(s.out, strings.Repeat("-", 90))

	for _, item := range items {
		kind := "file"
		size := humanSize(item.Size)

		if item.IsFolder {
			kind = "dir"
			size = ""
		}

		modified := ""
		if !item.ModifiedAt.IsZero() {
			modified = item.ModifiedAt.Format("2006-01-02 15:04")
		}

		fmt.Fprintf(s.out, "%-6s %-50s %10s  %s\n", kind, truncate(item.Name, 50), size, modified)
	}

	fmt.Fprintln(s.out)
}

// cmdCd navigates into a folder, up one level, or back to the root.
func (s *Session) cmdCd(ctx context.Context, target string) {
	switch target {
	case "..":
		if len(s.stack) == 0 {
			return
		}

		s.cwd = s.stack[len(s.stack)-1]
		s.stack = s.stack[:len(s.stack)-1]

		return
	case "/":
		s.cwd = crumb{itemID: "", path: "/"}
		s.stack = nil

		return
	}

	items, err := s.api.ListChildren(ctx, s.driveID, s.cwd.itemID)
	if err != nil {
		fmt.Fprintf(s.out, "listing incomplete: %v\n", err)
	}

	item := findItem(target, items)
	if item == nil {
		fmt.Fprintf(s.out, "no such item: %s\n", target)
		return
	}

	if !item.IsFolder {
		fmt.Fprintf(s.out, "not a folder: %s\n", target)
		return
	}

	s.stack = append(s.stack, s.cwd)
	s.cwd = crumb{
		itemID: item.ID,
		path:   strings.TrimRight(s.cwd.path, "/") + "/" + item.Name,
	}
}

// cmdDownload saves a file from the current folder to the working
// directory.
func (s *Session) cmdDownload(ctx context.Context, name string) {
	items, err := s.api.ListChildren(ctx, s.driveID, s.cwd.itemID)
	if err != nil {
		fmt.Fprintf(s.out, "listing incomplete: %v\n", err)
	}

	item := findItem(name, items)
	if item == nil {
		fmt.Fprintf(s.out, "no such item: %s\n", name)
		return
	}

	if item.IsFolder {
		fmt.Fprintf(s.out, "is a folder, not a file: %s\n", name)
		return
	}

	f, err := os.Create(item.Name)
	if err != nil {
		fmt.Fprintf(s.out, "creating local file: %v\n", err)
		return
	}

	n, err := s.api.DownloadItem(ctx, s.driveID, item.ID, f)

	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		fmt.Fprintf(s.out, "download failed: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "downloaded %s (%s)\n", item.Name, humanSize(n))
}

func (s *Session) cmdHelp() {
	fmt.Fprint(s.out, `Commands:
  dir                  list current folder
  cd <folder>          enter a folder (quote names with spaces)
  cd ..                go to the parent folder
  cd /                 go to the drive root
  download <file>      save a file to the working directory
  pwd                  show current path and drive ID
  help                 this help
  exit                 leave the session
`)
}

// findItem matches an item by name, case-insensitively.
func findItem(name string, items []graph.Item) *graph.Item {
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			return &items[i]
		}
	}

	return nil
}

// truncate shortens a string for table display.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n-1] + "…"
}

// humanSize renders a byte count for table display.
func humanSize(bytes int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
		gb = 1024 * mb
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(gb))
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(mb))
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(kb))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}
