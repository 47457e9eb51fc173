// Package store persists samples as an append-only JSONL file.
package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

// Lines can carry full article bodies; 4 MiB leaves ample headroom over the
// bufio.Scanner default.
const maxLineBytes = 4 * 1024 * 1024

// JSONL is an append-only newline-delimited JSON store. One Sample per line,
// UTF-8. The file is exclusively owned by a single process: appends happen
// during the crawl, reads only at startup recovery and at export time.
type JSONL struct {
	path   string
	file   *os.File
	logger *zap.Logger
}

// Open creates the backing file (and parent directories) if absent and opens
// it for appending. A torn final line left by a crash mid-write is truncated
// first, so the next append starts on a fresh line instead of gluing itself
// onto the partial record.
func Open(path string, logger *zap.Logger) (*JSONL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create dataset directory: %w", err)
		}
	}
	if err := truncateTornTail(path, logger); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	return &JSONL{path: path, file: file, logger: logger}, nil
}

// Append writes one sample as a single line and syncs it to disk. The record
// goes out in one write call, so a crash mid-append can at worst leave a torn
// final line, which LoadAll tolerates; prior records are never touched.
func (s *JSONL) Append(sample scraper.Sample) error {
	line, err := json.Marshal(sample)
	if err != nil {
		return fmt.Errorf("marshal sample: %w", err)
	}
	line = append(line, '\n')
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append sample: %w", err)
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("sync dataset file: %w", err)
	}
	return nil
}

// LoadAll reads every record in storage order. A torn final line left by a
// crash mid-write is skipped with a warning; malformed JSON anywhere else is
// an error.
func (s *JSONL) LoadAll() ([]scraper.Sample, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer file.Close() //nolint:errcheck // read-only handle

	return decodeAll(file, s.logger)
}

// Recover rebuilds the crawl state by replaying the store: every persisted
// URL enters the seen set, and the count equals the number of records read.
func (s *JSONL) Recover() (*scraper.CrawlState, error) {
	samples, err := s.LoadAll()
	if err != nil {
		return nil, err
	}
	state := scraper.NewCrawlState()
	for _, sample := range samples {
		state.Mark(sample.URL)
	}
	return state, nil
}

// Path returns the location of the backing file.
func (s *JSONL) Path() string {
	return s.path
}

// Close releases the append handle.
func (s *JSONL) Close() error {
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close dataset file: %w", err)
	}
	return nil
}

// truncateTornTail drops a partial final line so the file always ends on a
// record boundary before the append handle is opened. Without this, the first
// append of a resumed run would merge into the torn record and turn it into
// an unreadable interior line.
func truncateTornTail(path string, logger *zap.Logger) error {
	file, err := os.OpenFile(path, os.O_RDWR, 0o600)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open dataset file: %w", err)
	}
	defer file.Close() //nolint:errcheck // repair handle

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat dataset file: %w", err)
	}
	size := info.Size()
	if size == 0 {
		return nil
	}

	last := make([]byte, 1)
	if _, err := file.ReadAt(last, size-1); err != nil {
		return fmt.Errorf("read dataset tail: %w", err)
	}
	if last[0] == '\n' {
		return nil
	}

	keep, err := lastLineStart(file, size)
	if err != nil {
		return fmt.Errorf("scan dataset tail: %w", err)
	}
	logger.Warn("truncating torn final record",
		zap.Int64("dropped_bytes", size-keep),
	)
	if err := file.Truncate(keep); err != nil {
		return fmt.Errorf("truncate torn record: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync dataset file: %w", err)
	}
	return nil
}

// lastLineStart returns the offset just past the last newline in the file, or
// zero when there is none. Scans backwards so large datasets are not read in
// full.
func lastLineStart(file *os.File, size int64) (int64, error) {
	const chunk = 64 * 1024
	for end := size; end > 0; {
		start := end - chunk
		if start < 0 {
			start = 0
		}
		buf := make([]byte, end-start)
		if _, err := file.ReadAt(buf, start); err != nil {
			return 0, err
		}
		if i := bytes.LastIndexByte(buf, '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

func decodeAll(r io.Reader, logger *zap.Logger) ([]scraper.Sample, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var lines [][]byte
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), raw...))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dataset file: %w", err)
	}

	samples := make([]scraper.Sample, 0, len(lines))
	for i, raw := range lines {
		var sample scraper.Sample
		if err := json.Unmarshal(raw, &sample); err != nil {
			if i == len(lines)-1 {
				// Torn final write from an interrupted run.
				logger.Warn("skipping torn final record", zap.Int("line", i+1))
				break
			}
			return nil, fmt.Errorf("malformed record at line %d: %w", i+1, err)
		}
		samples = append(samples, sample)
	}
	return samples, nil
}
