package golden

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/evalview/evalview/internal/trace"
)

func sampleRun(testName string, score float64) trace.RunRecord {
	return trace.RunRecord{
		RunID:     "run-1",
		TestName:  testName,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Score:     score,
		Trace: trace.ExecutionTrace{
			SessionID:   "session",
			StartedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			FinalOutput: "all good",
			Steps: []trace.StepTrace{
				{StepID: "s1", Tool: "get_weather", Success: true},
			},
		},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store := NewStore(t.TempDir())

	g := FromRun(sampleRun("checkout", 91.5), "alice", "first bless")
	path, err := store.Save(g, "")
	require.NoError(t, err)
	require.FileExists(t, path)

	loaded, ok, err := store.Load("checkout", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "checkout", loaded.Metadata.TestName)
	require.Equal(t, "alice", loaded.Metadata.BlessedBy)
	require.Equal(t, 91.5, loaded.Metadata.Score)
	require.Equal(t, []string{"get_weather"}, loaded.ToolSequence)
	require.Equal(t, g.OutputHash, loaded.OutputHash)
}

func TestLoadMissingGolden(t *testing.T) {
	store := NewStore(t.TempDir())
	_, ok, err := store.Load("never-blessed", "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSaveSanitizesHostileNames(t *testing.T) {
	store := NewStore(t.TempDir())

	g := FromRun(sampleRun("a/b..c", 80), "", "")
	path, err := store.Save(g, "")
	require.NoError(t, err)

	base := filepath.Base(path)
	require.Equal(t, "a_b__c.golden.json", base)
	require.NotContains(t, base, "/")
	require.NotContains(t, strings.TrimSuffix(base, ".golden.json"), ".")

	// The same name resolves to the same file on lookup.
	loaded, ok, err := store.Load("a/b..c", "")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a/b..c", loaded.Metadata.TestName)
}

func TestVariantCapRejectsSixth(t *testing.T) {
	store := NewStore(t.TempDir())
	g := FromRun(sampleRun("checkout", 90), "", "")

	_, err := store.Save(g, "")
	require.NoError(t, err)
	for i := 1; i <= 4; i++ {
		_, err := store.Save(g, fmt.Sprintf("v%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, MaxVariants, store.CountVariants("checkout"))

	_, err = store.Save(g, "v5")
	var limitErr *VariantLimitError
	require.ErrorAs(t, err, &limitErr)
	require.Equal(t, "checkout", limitErr.TestName)

	// Overwriting an existing key is always allowed at the cap.
	_, err = store.Save(g, "v1")
	require.NoError(t, err)
	require.Equal(t, MaxVariants, store.CountVariants("checkout"))
}

func TestDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	g := FromRun(sampleRun("checkout", 90), "", "")

	_, err := store.Save(g, "alt")
	require.NoError(t, err)

	removed, err := store.Delete("checkout", "alt")
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Delete("checkout", "alt")
	require.NoError(t, err)
	require.False(t, removed)
}

func TestListSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Save(FromRun(sampleRun("alpha", 90), "", ""), "")
	require.NoError(t, err)
	_, err = store.Save(FromRun(sampleRun("beta", 85), "", ""), "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.golden.json"), []byte("{nope"), 0644))

	metas, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 2)
	require.Equal(t, "alpha", metas[0].TestName)
	require.Equal(t, "beta", metas[1].TestName)
}

func TestListExcludesVariants(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save(FromRun(sampleRun("alpha", 90), "", ""), "")
	require.NoError(t, err)
	_, err = store.Save(FromRun(sampleRun("alpha", 88), "", ""), "concise")
	require.NoError(t, err)

	metas, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, metas, 1)
}

func TestLoadAllVariantsDefaultFirst(t *testing.T) {
	store := NewStore(t.TempDir())

	_, err := store.Save(FromRun(sampleRun("alpha", 90), "", "default"), "")
	require.NoError(t, err)
	_, err = store.Save(FromRun(sampleRun("alpha", 85), "", "variant b"), "b")
	require.NoError(t, err)
	_, err = store.Save(FromRun(sampleRun("alpha", 80), "", "variant a"), "a")
	require.NoError(t, err)

	variants, err := store.LoadAllVariants(context.Background(), "alpha")
	require.NoError(t, err)
	require.Len(t, variants, 3)
	require.Equal(t, "default", variants[0].Metadata.Notes)
	require.Equal(t, "variant a", variants[1].Metadata.Notes)
	require.Equal(t, "variant b", variants[2].Metadata.Notes)
}

func TestLoadAllVariantsNone(t *testing.T) {
	store := NewStore(t.TempDir())
	variants, err := store.LoadAllVariants(context.Background(), "ghost")
	require.NoError(t, err)
	require.Empty(t, variants)
}

func TestSanitizeName(t *testing.T) {
	require.Equal(t, "simple-name_1", SanitizeName("simple-name_1"))
	require.Equal(t, "a_b__c", SanitizeName("a/b..c"))
	require.Equal(t, "___etc_passwd", SanitizeName("../etc/passwd"))
	require.Equal(t, "caf_", SanitizeName("café"))
}
