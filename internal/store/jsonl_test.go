package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexandrainst/lrytas-scraper/internal/scraper"
)

func sample(n string) scraper.Sample {
	return scraper.Sample{
		URL:     "https://www.lrytas.lt/a/" + n,
		Title:   "Title " + n,
		Summary: "Summary " + n,
		Text:    "Body " + n,
	}
}

func TestAppendAndLoadAllRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	want := []scraper.Sample{sample("1"), sample("2"), sample("3")}
	for _, w := range want {
		require.NoError(t, s.Append(w))
	}

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Equal(t, want, got, "samples must round-trip losslessly in storage order")
}

func TestOpenCreatesMissingDirectories(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data", "raw", "dataset.jsonl")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	require.NoError(t, s.Append(sample("1")))
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestLoadAllOnMissingFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.NoError(t, os.Remove(path))

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRecoverRebuildsStateFromAnyPrefix(t *testing.T) {
	t.Parallel()

	all := []scraper.Sample{sample("1"), sample("2"), sample("3"), sample("4")}
	for prefix := 0; prefix <= len(all); prefix++ {
		path := filepath.Join(t.TempDir(), "dataset.jsonl")
		s, err := Open(path, zap.NewNop())
		require.NoError(t, err)

		for _, w := range all[:prefix] {
			require.NoError(t, s.Append(w))
		}

		state, err := s.Recover()
		require.NoError(t, err)
		require.Equal(t, prefix, state.Count())
		for _, w := range all[:prefix] {
			require.True(t, state.Seen(w.URL))
		}
		for _, w := range all[prefix:] {
			require.False(t, state.Seen(w.URL))
		}
		require.NoError(t, s.Close())
	}
}

func TestLoadAllSkipsTornFinalLine(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	require.NoError(t, s.Append(sample("1")))
	require.NoError(t, s.Append(sample("2")))

	// Simulate a crash mid-append: a final record cut off before the close
	// of the JSON object.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"url":"https://www.lrytas.lt/a/torn","ti`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)

	state, err := s.Recover()
	require.NoError(t, err)
	require.Equal(t, 2, state.Count())
	require.False(t, state.Seen("https://www.lrytas.lt/a/torn"))
}

func TestReopenAfterTornWriteKeepsDatasetReadable(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Append(sample("1")))
	require.NoError(t, s.Close())

	// Crash mid-append: a partial record with no trailing newline.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`{"url":"https://www.lrytas.lt/a/torn","ti`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	// The resumed run must recover the intact prefix and keep appending
	// readable records.
	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	state, err := s.Recover()
	require.NoError(t, err)
	require.Equal(t, 1, state.Count())
	require.False(t, state.Seen("https://www.lrytas.lt/a/torn"))

	require.NoError(t, s.Append(sample("2")))
	require.NoError(t, s.Append(sample("3")))
	require.NoError(t, s.Close())

	s, err = Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Equal(t, []scraper.Sample{sample("1"), sample("2"), sample("3")}, got)

	state, err = s.Recover()
	require.NoError(t, err)
	require.Equal(t, 3, state.Count())
}

func TestOpenTruncatesFileWithoutAnyCompleteRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"url":"https://www.lry`), 0o600))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	state, err := s.Recover()
	require.NoError(t, err)
	require.Zero(t, state.Count())

	require.NoError(t, s.Append(sample("1")))
	got, err := s.LoadAll()
	require.NoError(t, err)
	require.Equal(t, []scraper.Sample{sample("1")}, got)
}

func TestLoadAllRejectsCorruptMiddleRecord(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(
		`{"url":"u1","title":"t","summary":"s","text":"x"}`+"\n"+
			"not json\n"+
			`{"url":"u2","title":"t","summary":"s","text":"x"}`+"\n",
	), 0o600))

	s, err := Open(path, zap.NewNop())
	require.NoError(t, err)
	defer s.Close() //nolint:errcheck // test cleanup

	_, err = s.LoadAll()
	require.Error(t, err)
}