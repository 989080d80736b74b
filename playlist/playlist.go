// Package playlist models users, their playlist collections and the playlists
// themselves.
//
// Persistence is write-through: every mutation of a playlist that belongs to
// a collection saves the owning user's whole snapshot before returning. If
// the save fails the in-memory change is kept and the save error is returned.
// A User and its playlists are not safe for concurrent mutation.
package playlist

import (
	"context"
	"errors"
	"fmt"

	"vidlists/catalog"
)

// saveFunc persists the owning user. It is the playlist's only link to its owner.
type saveFunc func(ctx context.Context) error

// Playlist is a named, ordered sequence of catalog video ids. Duplicates are allowed.
type Playlist struct {
	id     string
	name   string
	videos []int64
	owner  string
	save   saveFunc
}

// New creates an unowned playlist. It is not persisted until added to a Collection.
func New(id, name string, videoIDs []int64) *Playlist {
	videos := make([]int64, len(videoIDs))
	copy(videos, videoIDs)
	return &Playlist{id: id, name: name, videos: videos}
}

// ID returns the playlist's immutable identity.
func (p *Playlist) ID() string { return p.id }

// Name returns the playlist's display name.
func (p *Playlist) Name() string { return p.name }

// Owner returns the owning user's id, or "" if the playlist is not in a collection.
func (p *Playlist) Owner() string { return p.owner }

// Len returns the number of entries.
func (p *Playlist) Len() int { return len(p.videos) }

// VideoIDs returns a copy of the ordered video ids.
func (p *Playlist) VideoIDs() []int64 {
	out := make([]int64, len(p.videos))
	copy(out, p.videos)
	return out
}

func (p *Playlist) persist(ctx context.Context) error {
	if p.save == nil {
		return nil
	}
	return p.save(ctx)
}

// Add appends ids to the end of the playlist.
func (p *Playlist) Add(ctx context.Context, ids ...int64) error {
	p.videos = append(p.videos, ids...)
	return p.persist(ctx)
}

// RemoveAt deletes the entry at position i, shifting later entries left.
func (p *Playlist) RemoveAt(ctx context.Context, i int) error {
	if i < 0 || i >= len(p.videos) {
		return &IndexError{Op: "remove", Index: i, Len: len(p.videos)}
	}
	p.videos = append(p.videos[:i], p.videos[i+1:]...)
	return p.persist(ctx)
}

// Reorder replaces the sequence with old[order[0]], old[order[1]], ...
// order may repeat or omit positions, so it can also shrink or duplicate
// entries. Every index is checked before anything changes.
func (p *Playlist) Reorder(ctx context.Context, order []int) error {
	for _, i := range order {
		if i < 0 || i >= len(p.videos) {
			return &IndexError{Op: "reorder", Index: i, Len: len(p.videos)}
		}
	}
	next := make([]int64, len(order))
	for pos, i := range order {
		next[pos] = p.videos[i]
	}
	p.videos = next
	return p.persist(ctx)
}

// Rename changes the display name.
func (p *Playlist) Rename(ctx context.Context, name string) error {
	p.name = name
	return p.persist(ctx)
}

// Resolver looks videos up by id. *catalog.Cache implements it.
type Resolver interface {
	GetVideo(ctx context.Context, id int64) (*catalog.Video, error)
}

// Entry is one resolved position of a playlist. When the id no longer
// resolves, Video is nil and Err wraps ErrUnresolvedVideo.
type Entry struct {
	Index   int
	VideoID int64
	Video   *catalog.Video
	Err     error
}

// EachVideo resolves every entry in order and calls fn with it. Missing
// videos are delivered as entries with Err set so the caller can skip or
// flag them. Any other resolver error, or an error from fn, stops the walk
// and is returned.
func (p *Playlist) EachVideo(ctx context.Context, r Resolver, fn func(Entry) error) error {
	for i, id := range p.VideoIDs() {
		entry := Entry{Index: i, VideoID: id}
		video, err := r.GetVideo(ctx, id)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
			entry.Err = &UnresolvedVideoError{VideoID: id, Index: i}
		case err != nil:
			return fmt.Errorf("resolve video %d: %w", id, err)
		default:
			entry.Video = video
		}
		if err := fn(entry); err != nil {
			return err
		}
	}
	return nil
}
