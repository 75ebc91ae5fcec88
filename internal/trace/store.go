package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RunRecord pairs one finished execution with the score the evaluator
// pipeline assigned to it. The score is opaque to this package.
type RunRecord struct {
	RunID     string         `json:"run_id"`
	TestName  string         `json:"test_name"`
	Timestamp time.Time      `json:"timestamp"`
	Score     float64        `json:"score"`
	Trace     ExecutionTrace `json:"trace"`
}

type RunFilter struct {
	TestName string
	Since    *time.Time
	Until    *time.Time
	Limit    int
}

// RunStore persists finished runs as JSONL under one directory per day.
// A single test-runner process is assumed to own the directory; the mutex
// only guards in-process concurrent appends.
type RunStore struct {
	baseDir string
	mu      sync.Mutex
}

func NewRunStore(baseDir string) *RunStore {
	return &RunStore{baseDir: baseDir}
}

func (s *RunStore) Append(r RunRecord) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	dateDir := filepath.Join(s.baseDir, r.Timestamp.Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dateDir, "runs.jsonl")

	line, err := json.Marshal(r)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

func (s *RunStore) List(filter RunFilter) ([]RunRecord, error) {
	var runs []RunRecord
	if _, err := os.Stat(s.baseDir); err != nil {
		return nil, err
	}

	err := filepath.WalkDir(s.baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, "runs.jsonl") {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			var r RunRecord
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				return fmt.Errorf("parse run record: %w", err)
			}
			if filter.TestName != "" && r.TestName != filter.TestName {
				continue
			}
			if filter.Since != nil && r.Timestamp.Before(*filter.Since) {
				continue
			}
			if filter.Until != nil && r.Timestamp.After(*filter.Until) {
				continue
			}
			runs = append(runs, r)
		}
		return scanner.Err()
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})

	if filter.Limit > 0 && len(runs) > filter.Limit {
		runs = runs[len(runs)-filter.Limit:]
	}
	return runs, nil
}

// Latest returns the most recent run for a test, or ok=false when the test
// has no recorded runs yet.
func (s *RunStore) Latest(testName string) (RunRecord, bool, error) {
	runs, err := s.List(RunFilter{TestName: testName})
	if err != nil {
		if os.IsNotExist(err) {
			return RunRecord{}, false, nil
		}
		return RunRecord{}, false, err
	}
	if len(runs) == 0 {
		return RunRecord{}, false, nil
	}
	return runs[len(runs)-1], true, nil
}

// TestNames returns the distinct test names present in the store, sorted.
func (s *RunStore) TestNames() ([]string, error) {
	runs, err := s.List(RunFilter{})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, r := range runs {
		if !seen[r.TestName] {
			seen[r.TestName] = true
			names = append(names, r.TestName)
		}
	}
	sort.Strings(names)
	return names, nil
}
