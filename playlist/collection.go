package playlist

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Collection holds one user's playlists keyed by id. Every mutation saves
// the owning user.
type Collection struct {
	owner     string
	save      saveFunc
	playlists map[string]*Playlist
}

func newCollection(owner string, save saveFunc) *Collection {
	return &Collection{
		owner:     owner,
		save:      save,
		playlists: make(map[string]*Playlist),
	}
}

// Add makes p part of the collection, replacing any playlist with the same
// id, and saves. A playlist owned by a different user is rejected.
func (c *Collection) Add(ctx context.Context, p *Playlist) error {
	if p == nil {
		return errors.New("playlist: nil playlist")
	}
	if p.owner != "" && p.owner != c.owner {
		return fmt.Errorf("%w: %s belongs to %s", ErrPlaylistOwned, p.id, p.owner)
	}
	c.attach(p)
	return c.save(ctx)
}

func (c *Collection) attach(p *Playlist) {
	p.owner = c.owner
	p.save = c.save
	c.playlists[p.id] = p
}

// Delete removes p by id and saves. Deleting an absent playlist is not an error.
// The removed playlist no longer saves on mutation.
func (c *Collection) Delete(ctx context.Context, p *Playlist) error {
	if p == nil {
		return nil
	}
	if existing, ok := c.playlists[p.id]; ok {
		delete(c.playlists, p.id)
		existing.owner = ""
		existing.save = nil
	}
	return c.save(ctx)
}

// Get returns the playlist with the given id.
func (c *Collection) Get(id string) (*Playlist, error) {
	p, ok := c.playlists[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlaylistNotFound, id)
	}
	return p, nil
}

// All returns every playlist sorted by name, then id.
func (c *Collection) All() []*Playlist {
	out := make([]*Playlist, 0, len(c.playlists))
	for _, p := range c.playlists {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].name != out[j].name {
			return out[i].name < out[j].name
		}
		return out[i].id < out[j].id
	})
	return out
}

// Len returns the number of playlists.
func (c *Collection) Len() int { return len(c.playlists) }
