package playlist

import (
	"errors"
	"fmt"
)

// Sentinel errors for playlist operations.
var (
	// ErrPlaylistNotFound indicates no playlist with the requested id exists in the collection.
	ErrPlaylistNotFound = errors.New("playlist: not found")
	// ErrIndexOutOfRange indicates a position outside the playlist's video sequence.
	ErrIndexOutOfRange = errors.New("playlist: index out of range")
	// ErrUnresolvedVideo indicates a stored video id no longer exists in the catalog.
	ErrUnresolvedVideo = errors.New("playlist: unresolved video reference")
	// ErrCorruptSnapshot indicates a persisted user record could not be decoded.
	ErrCorruptSnapshot = errors.New("playlist: corrupt user snapshot")
	// ErrPlaylistOwned indicates the playlist already belongs to another user.
	ErrPlaylistOwned = errors.New("playlist: owned by another user")
	// ErrInvalidUserID indicates an empty user id.
	ErrInvalidUserID = errors.New("playlist: empty user id")
)

// IndexError reports an out-of-range position passed to RemoveAt or Reorder.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("playlist: %s: index %d out of range [0,%d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error { return ErrIndexOutOfRange }

// UnresolvedVideoError identifies a playlist entry whose video is gone from the catalog.
type UnresolvedVideoError struct {
	VideoID int64
	Index   int
}

func (e *UnresolvedVideoError) Error() string {
	return fmt.Sprintf("playlist: video %d at position %d no longer in catalog", e.VideoID, e.Index)
}

func (e *UnresolvedVideoError) Unwrap() error { return ErrUnresolvedVideo }
