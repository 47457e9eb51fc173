package words

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextDrainsPoolWithoutRepeats(t *testing.T) {
	t.Parallel()

	const size = 50
	s, err := New(Config{Size: size, Seed: 1})
	require.NoError(t, err)
	require.Equal(t, size, s.Remaining())

	seen := make(map[string]struct{}, size)
	for i := 0; i < size; i++ {
		word, err := s.Next()
		require.NoError(t, err)
		require.NotEmpty(t, word)
		_, dup := seen[word]
		require.False(t, dup, "word %q handed out twice", word)
		seen[word] = struct{}{}
	}

	_, err = s.Next()
	require.ErrorIs(t, err, ErrExhausted)
}

func TestPermutationIsFixedPerSeed(t *testing.T) {
	t.Parallel()

	a, err := New(Config{Size: 30, Seed: 7})
	require.NoError(t, err)
	b, err := New(Config{Size: 30, Seed: 7})
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		wa, err := a.Next()
		require.NoError(t, err)
		wb, err := b.Next()
		require.NoError(t, err)
		require.Equal(t, wa, wb)
	}
}

func TestDifferentSeedsPermuteDifferently(t *testing.T) {
	t.Parallel()

	a, err := New(Config{Size: 100, Seed: 1})
	require.NoError(t, err)
	b, err := New(Config{Size: 100, Seed: 2})
	require.NoError(t, err)

	same := true
	for i := 0; i < 100; i++ {
		wa, err := a.Next()
		require.NoError(t, err)
		wb, err := b.Next()
		require.NoError(t, err)
		if wa != wb {
			same = false
		}
	}
	require.False(t, same, "two seeds produced the same permutation")
}

func TestSizeBeyondListTakesWholeList(t *testing.T) {
	t.Parallel()

	small, err := New(Config{Size: 10, Seed: 3})
	require.NoError(t, err)
	require.Equal(t, 10, small.Remaining())

	all, err := New(Config{Size: 1 << 20, Seed: 3})
	require.NoError(t, err)
	require.Greater(t, all.Remaining(), small.Remaining())
}