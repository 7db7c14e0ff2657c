package scan

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// streamWriter is one append-only CSV destination. The mutex covers the
// whole write-then-flush so rows from concurrent jobs never interleave
// mid-record.
type streamWriter struct {
	mu     sync.Mutex
	file   *os.File
	csv    *csv.Writer
	path   string
	rows   int64
	logger *slog.Logger
}

// newStreamWriter creates the destination file and writes its header
// before returning. Header failures are fatal — a table without a
// schema row is useless.
func newStreamWriter(path string, header []string, logger *slog.Logger) (*streamWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("scan: creating output file %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("scan: writing header to %s: %w", path, err)
	}

	w.Flush()

	if err := w.Error(); err != nil {
		f.Close()
		return nil, fmt.Errorf("scan: writing header to %s: %w", path, err)
	}

	return &streamWriter{
		file:   f,
		csv:    w,
		path:   path,
		logger: logger,
	}, nil
}

// append writes one row under the lock. A failed write is logged and
// the row dropped; other jobs and streams are unaffected.
func (s *streamWriter) append(row []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.csv.Write(row); err != nil {
		s.logger.Error("dropping record, write failed",
			slog.String("file", s.path),
			slog.String("error", err.Error()),
		)

		return
	}

	s.csv.Flush()

	if err := s.csv.Error(); err != nil {
		s.logger.Error("dropping record, flush failed",
			slog.String("file", s.path),
			slog.String("error", err.Error()),
		)

		return
	}

	s.rows++
}

func (s *streamWriter) count() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rows
}

func (s *streamWriter) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.csv.Flush()

	if err := s.csv.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("scan: flushing %s: %w", s.path, err)
	}

	if err := s.file.Close(); err != nil {
		return fmt.Errorf("scan: closing %s: %w", s.path, err)
	}

	return nil
}

// CSVSink owns the three per-run output tables (users, sites, files).
// Append methods are safe under arbitrary concurrent callers; each
// destination serializes independently, so file appends never block
// drive-record appends.
type CSVSink struct {
	users *streamWriter
	sites *streamWriter
	files *streamWriter
}

// SinkPaths reports where a sink writes each stream.
type SinkPaths struct {
	Users string
	Sites string
	Files string
}

// NewCSVSink creates the three timestamped CSV files under dir and
// writes their headers. stamp is a filesystem-safe run timestamp,
// typically "20060102_150405".
func NewCSVSink(dir, stamp string, logger *slog.Logger) (*CSVSink, error) {
	if logger == nil {
		logger = slog.Default()
	}

	users, err := newStreamWriter(filepath.Join(dir, "users_"+stamp+".csv"), userDriveHeader, logger)
	if err != nil {
		return nil, err
	}

	sites, err := newStreamWriter(filepath.Join(dir, "sites_"+stamp+".csv"), siteDriveHeader, logger)
	if err != nil {
		users.close()
		return nil, err
	}

	files, err := newStreamWriter(filepath.Join(dir, "files_"+stamp+".csv"), fileHeader, logger)
	if err != nil {
		users.close()
		sites.close()

		return nil, err
	}

	return &CSVSink{users: users, sites: sites, files: files}, nil
}

// AppendUserDrive appends one row to the users table.
func (s *CSVSink) AppendUserDrive(r UserDriveRecord) {
	s.users.append(r.row())
}

// AppendSiteDrive appends one row to the sites table.
func (s *CSVSink) AppendSiteDrive(r SiteDriveRecord) {
	s.sites.append(r.row())
}

// AppendFile appends one row to the files table.
func (s *CSVSink) AppendFile(r FileRecord) {
	s.files.append(r.row())
}

// Counts returns the number of data rows written per stream.
func (s *CSVSink) Counts() (users, sites, files int64) {
	return s.users.count(), s.sites.count(), s.files.count()
}

// Paths returns the output file paths.
func (s *CSVSink) Paths() SinkPaths {
	return SinkPaths{
		Users: s.users.path,
		Sites: s.sites.path,
		Files: s.files.path,
	}
}

// Close flushes and closes all three destinations, returning the first
// error encountered.
func (s *CSVSink) Close() error {
	errUsers := s.users.close()
	errSites := s.sites.close()
	errFiles := s.files.close()

	if errUsers != nil {
		return errUsers
	}

	if errSites != nil {
		return errSites
	}

	return errFiles
}
