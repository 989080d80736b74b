package playlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"vidlists/internal/humanid"
	"vidlists/storage"
)

// User owns exactly one playlist collection and persists it as a single snapshot.
type User struct {
	id        string
	store     storage.Store
	logger    *slog.Logger
	playlists *Collection
}

// ID returns the user's identity, which is also the storage key.
func (u *User) ID() string { return u.id }

// Playlists returns the user's collection.
func (u *User) Playlists() *Collection { return u.playlists }

// Save writes the user's snapshot to the store.
func (u *User) Save(ctx context.Context) error {
	data, err := json.Marshal(u.snapshot())
	if err != nil {
		return fmt.Errorf("encode user %s: %w", u.id, err)
	}
	if err := u.store.Write(ctx, u.id, data); err != nil {
		u.logger.Warn("save user failed",
			slog.String("user", u.id),
			slog.Any("error", err))
		return fmt.Errorf("save user %s: %w", u.id, err)
	}
	u.logger.Debug("saved user",
		slog.String("user", u.id),
		slog.Int("playlists", u.playlists.Len()))
	return nil
}

// snapshot is the persisted layout of a user.
type snapshot struct {
	ID        string                      `json:"id"`
	Playlists map[string]playlistSnapshot `json:"playlists"`
}

type playlistSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Videos []int64 `json:"videos"`
}

func (u *User) snapshot() snapshot {
	s := snapshot{
		ID:        u.id,
		Playlists: make(map[string]playlistSnapshot, u.playlists.Len()),
	}
	for id, p := range u.playlists.playlists {
		s.Playlists[id] = playlistSnapshot{ID: p.id, Name: p.name, Videos: p.VideoIDs()}
	}
	return s
}

// IDFunc returns a fresh, globally unique identifier.
type IDFunc func() string

// Users loads and creates users on top of a Store.
type Users struct {
	store  storage.Store
	newID  IDFunc
	logger *slog.Logger
}

// NewUsers returns a Users service. A nil newID uses humanid.NewID; a nil
// logger uses slog.Default().
func NewUsers(store storage.Store, newID IDFunc, logger *slog.Logger) *Users {
	if newID == nil {
		newID = humanid.NewID
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Users{store: store, newID: newID, logger: logger}
}

// NewUserID returns a fresh identity for a new session.
func (s *Users) NewUserID() string { return s.newID() }

// NewPlaylist creates an unowned playlist with a fresh id.
func (s *Users) NewPlaylist(name string, videoIDs []int64) *Playlist {
	return New(s.newID(), name, videoIDs)
}

// Load returns the user stored under userID. An unknown id creates an empty
// user and saves it before returning.
func (s *Users) Load(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, ErrInvalidUserID
	}

	u := &User{id: userID, store: s.store, logger: s.logger}
	u.playlists = newCollection(userID, u.Save)

	exists, err := s.store.Exists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if !exists {
		if err := u.Save(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("created user", slog.String("user", userID))
		return u, nil
	}

	data, err := s.store.Read(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID, err)
	}
	if err := u.restore(data); err != nil {
		return nil, err
	}
	return u, nil
}

// restore rebuilds the collection from a snapshot without saving.
func (u *User) restore(data []byte) error {
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: user %s: %w", ErrCorruptSnapshot, u.id, err)
	}
	if s.ID != "" && s.ID != u.id {
		return fmt.Errorf("%w: record for %s claims id %s", ErrCorruptSnapshot, u.id, s.ID)
	}
	for key, ps := range s.Playlists {
		if ps.ID == "" {
			ps.ID = key
		}
		if ps.ID != key {
			return fmt.Errorf("%w: user %s: playlist key %s holds id %s", ErrCorruptSnapshot, u.id, key, ps.ID)
		}
		u.playlists.attach(New(ps.ID, ps.Name, ps.Videos))
	}
	return nil
}
