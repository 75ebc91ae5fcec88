package golden

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/evalview/evalview/internal/util"
)

// MaxVariants caps the goldens per test name: one default plus up to four
// named variants. The cap only applies when saving a new key; overwriting
// an existing key always succeeds.
const MaxVariants = 5

const goldenSuffix = ".golden.json"

// VariantLimitError is a caller contract violation: saving a new variant
// would exceed the per-test cap.
type VariantLimitError struct {
	TestName string
	Limit    int
}

func (e *VariantLimitError) Error() string {
	return fmt.Sprintf("test %q already has %d golden variants; delete one before blessing another", e.TestName, e.Limit)
}

// Store keeps one golden file per (test name, variant) under a single
// directory. Test and variant names are user input and are sanitized into
// filesystem-safe keys; the same sanitization runs on save and on lookup so
// a name always resolves to the same file.
type Store struct {
	baseDir string
}

func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// SanitizeName maps a user-controlled name to a safe path component. Every
// rune outside [A-Za-z0-9_-] becomes '_', which blocks both path traversal
// and extension confusion.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

func (s *Store) path(testName, variant string) string {
	name := SanitizeName(testName)
	if variant != "" {
		name += ".variant_" + SanitizeName(variant)
	}
	return filepath.Join(s.baseDir, name+goldenSuffix)
}

// Save writes a golden trace and returns the file path. Saving a new
// variant fails with *VariantLimitError once the test has MaxVariants
// goldens; overwriting an existing key does not count against the cap.
func (s *Store) Save(g GoldenTrace, variant string) (string, error) {
	path := s.path(g.Metadata.TestName, variant)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if s.CountVariants(g.Metadata.TestName) >= MaxVariants {
			return "", &VariantLimitError{TestName: g.Metadata.TestName, Limit: MaxVariants}
		}
	}

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return "", err
	}
	data, err := util.CanonicalJSON(g)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load returns the stored golden for (testName, variant), or ok=false when
// none exists. A missing golden is an ordinary condition, not an error.
func (s *Store) Load(testName, variant string) (GoldenTrace, bool, error) {
	data, err := os.ReadFile(s.path(testName, variant))
	if err != nil {
		if os.IsNotExist(err) {
			return GoldenTrace{}, false, nil
		}
		return GoldenTrace{}, false, err
	}
	var g GoldenTrace
	if err := json.Unmarshal(data, &g); err != nil {
		return GoldenTrace{}, false, fmt.Errorf("parse golden %s: %w", testName, err)
	}
	return g, true, nil
}

// Has reports whether a default golden exists for the test.
func (s *Store) Has(testName string) bool {
	_, err := os.Stat(s.path(testName, ""))
	return err == nil
}

// Delete removes one golden and reports whether anything was removed.
func (s *Store) Delete(testName, variant string) (bool, error) {
	err := os.Remove(s.path(testName, variant))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List enumerates the metadata of every default golden. Individually
// corrupt files are skipped with a warning so one bad entry cannot sink
// the whole listing.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	log := clog.FromContext(ctx)

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var out []Metadata
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, goldenSuffix) {
			continue
		}
		if strings.Contains(name, ".variant_") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			log.Warnf("skipping unreadable golden %s: %v", name, err)
			continue
		}
		var g GoldenTrace
		if err := json.Unmarshal(data, &g); err != nil {
			log.Warnf("skipping corrupt golden %s: %v", name, err)
			continue
		}
		out = append(out, g.Metadata)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].TestName < out[j].TestName })
	return out, nil
}

// LoadAllVariants returns every golden for a test, default first, then the
// named variants in filename order. Corrupt variants are skipped with a
// warning.
func (s *Store) LoadAllVariants(ctx context.Context, testName string) ([]GoldenTrace, error) {
	log := clog.FromContext(ctx)

	var out []GoldenTrace
	if g, ok, err := s.Load(testName, ""); err != nil {
		log.Warnf("skipping corrupt golden for %s: %v", testName, err)
	} else if ok {
		out = append(out, g)
	}

	paths, err := s.variantPaths(testName)
	if err != nil {
		return out, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Warnf("skipping unreadable variant %s: %v", filepath.Base(path), err)
			continue
		}
		var g GoldenTrace
		if err := json.Unmarshal(data, &g); err != nil {
			log.Warnf("skipping corrupt variant %s: %v", filepath.Base(path), err)
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

// CountVariants returns how many goldens exist for a test, default
// included.
func (s *Store) CountVariants(testName string) int {
	count := 0
	if s.Has(testName) {
		count++
	}
	paths, err := s.variantPaths(testName)
	if err != nil {
		return count
	}
	return count + len(paths)
}

func (s *Store) variantPaths(testName string) ([]string, error) {
	pattern := filepath.Join(s.baseDir, SanitizeName(testName)+".variant_*"+goldenSuffix)
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
