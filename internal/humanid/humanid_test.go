package humanid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWordlistUnique(t *testing.T) {
	seen := make(map[string]bool, len(wordlist))
	for i, w := range wordlist {
		require.NotEmpty(t, w, "word %d", i)
		assert.False(t, seen[w], "duplicate word %q", w)
		assert.Equal(t, strings.ToLower(w), w)
		assert.NotContains(t, w, "-")
		seen[w] = true
	}
}

func TestCompress(t *testing.T) {
	got, err := compress([]byte{1, 2, 3, 4, 5, 6, 7, 8}, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1 ^ 2, 3 ^ 4, 5 ^ 6, 7 ^ 8}, got)

	// Remainder goes to the last segment.
	got, err = compress([]byte{1, 2, 3, 4, 5}, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{1 ^ 2, 3 ^ 4 ^ 5}, got)

	_, err = compress([]byte{1}, 2)
	assert.ErrorIs(t, err, ErrTooFewBytes)

	_, err = compress([]byte{1}, 0)
	assert.Error(t, err)
}

func TestHumanize(t *testing.T) {
	got, err := Humanize([]byte{0, 1, 255}, 3)
	require.NoError(t, err)
	assert.Equal(t, "ack-alabama-zulu", got)
}

func TestFromUUIDDeterministic(t *testing.T) {
	u := uuid.MustParse("7f3a9c1e-0b2d-4e5f-8a6b-1c2d3e4f5a6b")

	a := FromUUID(u)
	b := FromUUID(u)
	assert.Equal(t, a, b)
	assert.Len(t, strings.Split(a.Digest, "-"), DefaultWords)
	assert.Equal(t, a.Digest+"-7f3a9c1e", a.ID())
	assert.Equal(t, a.Digest, a.String())
}

func TestNewIDsDiffer(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
		assert.Len(t, strings.Split(id, "-"), DefaultWords+1)
	}
}
