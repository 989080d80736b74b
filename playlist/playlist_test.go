package playlist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidlists/catalog"
)

func ownedPlaylist(t *testing.T, ids ...int64) (*Playlist, *memStore) {
	t.Helper()
	store := newMemStore()
	users := NewUsers(store, sequentialIDs(), nil)
	u, err := users.Load(context.Background(), "alice")
	require.NoError(t, err)

	p := users.NewPlaylist("mix", ids)
	require.NoError(t, u.Playlists().Add(context.Background(), p))
	return p, store
}

func TestNewCopiesInput(t *testing.T) {
	ids := []int64{1, 2}
	p := New("p", "name", ids)
	ids[0] = 99
	assert.Equal(t, []int64{1, 2}, p.VideoIDs())

	out := p.VideoIDs()
	out[0] = 42
	assert.Equal(t, []int64{1, 2}, p.VideoIDs())
}

func TestUnownedMutationsDoNotSave(t *testing.T) {
	ctx := context.Background()
	p := New("p", "name", nil)

	require.NoError(t, p.Add(ctx, 1, 2, 3))
	require.NoError(t, p.Reorder(ctx, []int{2, 0, 1}))
	require.NoError(t, p.RemoveAt(ctx, 0))
	require.NoError(t, p.Rename(ctx, "other"))

	assert.Equal(t, []int64{1, 2}, p.VideoIDs())
	assert.Equal(t, "other", p.Name())
	assert.Empty(t, p.Owner())
}

func TestReorderScenario(t *testing.T) {
	p, _ := ownedPlaylist(t)
	ctx := context.Background()

	require.NoError(t, p.Add(ctx, 10, 20, 30))
	require.NoError(t, p.Reorder(ctx, []int{2, 0, 1}))
	assert.Equal(t, []int64{30, 10, 20}, p.VideoIDs())
}

func TestReorderSubsetAndDuplicates(t *testing.T) {
	ctx := context.Background()

	p := New("p", "n", []int64{10, 20, 30})
	require.NoError(t, p.Reorder(ctx, []int{1}))
	assert.Equal(t, []int64{20}, p.VideoIDs())

	p = New("p", "n", []int64{10, 20, 30})
	require.NoError(t, p.Reorder(ctx, []int{0, 0, 2, 2}))
	assert.Equal(t, []int64{10, 10, 30, 30}, p.VideoIDs())

	p = New("p", "n", []int64{10, 20, 30})
	require.NoError(t, p.Reorder(ctx, nil))
	assert.Empty(t, p.VideoIDs())
}

func TestOutOfRangeLeavesPlaylistUnchanged(t *testing.T) {
	p, store := ownedPlaylist(t, 10, 20, 30)
	ctx := context.Background()
	before := store.writeCount()

	tests := []struct {
		name string
		op   func() error
		idx  int
	}{
		{"reorder past end", func() error { return p.Reorder(ctx, []int{0, 1, 3}) }, 3},
		{"reorder negative", func() error { return p.Reorder(ctx, []int{-1, 0, 1}) }, -1},
		{"remove past end", func() error { return p.RemoveAt(ctx, 3) }, 3},
		{"remove negative", func() error { return p.RemoveAt(ctx, -1) }, -1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			require.ErrorIs(t, err, ErrIndexOutOfRange)

			var idxErr *IndexError
			require.ErrorAs(t, err, &idxErr)
			assert.Equal(t, tc.idx, idxErr.Index)
			assert.Equal(t, 3, idxErr.Len)

			assert.Equal(t, []int64{10, 20, 30}, p.VideoIDs())
		})
	}

	assert.Equal(t, before, store.writeCount(), "rejected operations must not save")
}

func TestRemoveAtEmpty(t *testing.T) {
	p := New("p", "n", nil)
	err := p.RemoveAt(context.Background(), 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestRemoveAtShiftsLeft(t *testing.T) {
	p, _ := ownedPlaylist(t, 10, 20, 30, 20)
	require.NoError(t, p.RemoveAt(context.Background(), 1))
	assert.Equal(t, []int64{10, 30, 20}, p.VideoIDs())
}

func TestEveryMutationSaves(t *testing.T) {
	p, store := ownedPlaylist(t)
	ctx := context.Background()

	steps := []func() error{
		func() error { return p.Add(ctx, 1, 2, 3) },
		func() error { return p.RemoveAt(ctx, 0) },
		func() error { return p.Reorder(ctx, []int{1, 0}) },
		func() error { return p.Rename(ctx, "renamed") },
	}
	for i, step := range steps {
		before := store.writeCount()
		require.NoError(t, step())
		assert.Equal(t, before+1, store.writeCount(), "step %d", i)
	}
}

func TestSaveFailureKeepsMutation(t *testing.T) {
	p, store := ownedPlaylist(t, 1)
	store.failErr = errBoom

	err := p.Add(context.Background(), 2)
	require.ErrorIs(t, err, errBoom)
	assert.Equal(t, []int64{1, 2}, p.VideoIDs())
}

func TestEachVideo(t *testing.T) {
	p := New("p", "n", []int64{1, 404, 2, 1})
	resolver := mapResolver{
		1: {ID: 1, Title: "one"},
		2: {ID: 2, Title: "two"},
	}

	var entries []Entry
	err := p.EachVideo(context.Background(), resolver, func(e Entry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i, e := range entries {
		assert.Equal(t, i, e.Index)
	}
	assert.Equal(t, "one", entries[0].Video.Title)
	assert.Equal(t, "two", entries[2].Video.Title)
	assert.Equal(t, "one", entries[3].Video.Title)

	missing := entries[1]
	assert.Nil(t, missing.Video)
	assert.Equal(t, int64(404), missing.VideoID)
	require.ErrorIs(t, missing.Err, ErrUnresolvedVideo)
	var unresolved *UnresolvedVideoError
	require.ErrorAs(t, missing.Err, &unresolved)
	assert.Equal(t, 1, unresolved.Index)
}

func TestEachVideoStopsOnResolverError(t *testing.T) {
	p := New("p", "n", []int64{1, 2})
	upstream := catalog.ErrUpstreamUnavailable

	calls := 0
	err := p.EachVideo(context.Background(), failingResolver{err: upstream}, func(Entry) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, upstream)
	assert.Zero(t, calls)
}

func TestEachVideoStopsOnCallbackError(t *testing.T) {
	p := New("p", "n", []int64{1, 2, 3})
	resolver := mapResolver{1: {ID: 1}, 2: {ID: 2}, 3: {ID: 3}}

	stop := errors.New("stop")
	seen := 0
	err := p.EachVideo(context.Background(), resolver, func(e Entry) error {
		seen++
		if e.Index == 1 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, seen)
}
