// Package drift keeps a compact append-only history of check outcomes and
// detects slow quality decay that no single check would flag.
package drift

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/evalview/evalview/internal/diff"
)

// DefaultMaxEntries bounds the history log across all tests. Oldest
// entries are dropped first once the bound is exceeded.
const DefaultMaxEntries = 10000

const historyFileName = "drift.jsonl"

// minBytesPerLine is a conservative lower bound on the serialized size of
// one entry. The pruning pass uses it to skip reading the whole file on
// every append: a log under maxEntries*minBytesPerLine bytes cannot be
// over the cap.
const minBytesPerLine = 64

// Entry is one line of the history log.
type Entry struct {
	Timestamp        time.Time   `json:"timestamp"`
	TestName         string      `json:"test_name"`
	Status           diff.Status `json:"status"`
	ScoreDiff        float64     `json:"score_diff"`
	OutputSimilarity float64     `json:"output_similarity"`
	ToolChanges      int         `json:"tool_changes"`
	ModelChanged     bool        `json:"model_changed"`
}

// Tracker owns one shared history log. History is auxiliary: every I/O
// failure is logged and swallowed so a failed append can never abort a
// test run. A single process is assumed to own the log; concurrent
// in-process appends are safe enough (one open-append-write-close each)
// and a redundant or skipped prune loses at most a few stragglers.
type Tracker struct {
	path       string
	maxEntries int
}

// NewTracker stores the log under dir. maxEntries <= 0 selects the
// default cap.
func NewTracker(dir string, maxEntries int) *Tracker {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Tracker{
		path:       filepath.Join(dir, historyFileName),
		maxEntries: maxEntries,
	}
}

// RecordCheck appends one entry for a finished comparison, then prunes the
// log if it plausibly exceeds the entry cap.
func (t *Tracker) RecordCheck(ctx context.Context, d diff.TraceDiff, modelChanged bool) {
	log := clog.FromContext(ctx)

	entry := Entry{
		Timestamp:        time.Now().UTC(),
		TestName:         d.TestName,
		Status:           d.Status,
		ScoreDiff:        d.ScoreDiff,
		OutputSimilarity: d.OutputSimilarity(),
		ToolChanges:      len(d.ToolDiffs),
		ModelChanged:     modelChanged,
	}

	if err := t.append(entry); err != nil {
		log.Warnf("could not record drift history: %v", err)
		return
	}
	t.prune(ctx)
}

func (t *Tracker) append(entry Entry) error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0755); err != nil {
		return err
	}
	line, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(t.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(append(line, '\n'))
	return err
}

// prune rewrites the log with only the newest maxEntries lines. A cheap
// size stat gates the full read.
func (t *Tracker) prune(ctx context.Context) {
	log := clog.FromContext(ctx)

	info, err := os.Stat(t.path)
	if err != nil {
		return
	}
	if info.Size() <= int64(t.maxEntries)*minBytesPerLine {
		return
	}

	lines, err := t.readLines()
	if err != nil {
		log.Warnf("could not prune drift history: %v", err)
		return
	}
	if len(lines) <= t.maxEntries {
		return
	}
	keep := lines[len(lines)-t.maxEntries:]

	buf := make([]byte, 0, len(keep)*minBytesPerLine)
	for _, line := range keep {
		buf = append(buf, line...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(t.path, buf, 0644); err != nil {
		log.Warnf("could not rewrite drift history: %v", err)
	}
}

func (t *Tracker) readLines() ([]string, error) {
	f, err := os.Open(t.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

// TestHistory returns up to limit entries for a test, newest first.
// Malformed lines are skipped at debug level; a missing or unreadable log
// yields an empty history.
func (t *Tracker) TestHistory(ctx context.Context, testName string, limit int) []Entry {
	log := clog.FromContext(ctx)

	lines, err := t.readLines()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("could not read drift history: %v", err)
		}
		return nil
	}

	var entries []Entry
	for _, line := range lines {
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			log.Debugf("skipping malformed drift history line: %v", err)
			continue
		}
		if entry.TestName != testName {
			continue
		}
		entries = append(entries, entry)
	}

	// Newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
