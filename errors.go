package vidlists

import (
	"errors"
	"net/http"

	"vidlists/catalog"
	"vidlists/playlist"
	"vidlists/storage"
)

// Type aliases for convenient error handling.
type (
	// UpstreamError reports a non-2xx catalog response.
	UpstreamError = catalog.UpstreamError
	// IndexError reports an out-of-range playlist position.
	IndexError = playlist.IndexError
	// UnresolvedVideoError reports a playlist entry missing from the catalog.
	UnresolvedVideoError = playlist.UnresolvedVideoError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrUpstreamUnavailable indicates the catalog could not be reached.
	ErrUpstreamUnavailable = catalog.ErrUpstreamUnavailable
	// ErrUpstream indicates the catalog answered with a non-success status.
	ErrUpstream = catalog.ErrUpstream
	// ErrUpstreamProtocol indicates any other failure fetching or decoding a page.
	ErrUpstreamProtocol = catalog.ErrUpstreamProtocol
	// ErrVideoNotFound indicates the video id is not in the catalog.
	ErrVideoNotFound = catalog.ErrNotFound

	// ErrPlaylistNotFound indicates the playlist id is not in the collection.
	ErrPlaylistNotFound = playlist.ErrPlaylistNotFound
	// ErrIndexOutOfRange indicates an invalid playlist position.
	ErrIndexOutOfRange = playlist.ErrIndexOutOfRange
	// ErrUnresolvedVideo indicates a playlist references a video the catalog no longer has.
	ErrUnresolvedVideo = playlist.ErrUnresolvedVideo
	// ErrCorruptSnapshot indicates a stored user record could not be decoded.
	ErrCorruptSnapshot = playlist.ErrCorruptSnapshot

	// Storage errors
	// ErrNotFound indicates a key was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = storage.ErrLockTimeout
	// ErrUnknownDriver indicates an unsupported store driver.
	ErrUnknownDriver = storage.ErrUnknownDriver
)

// IsTransient reports whether a later retry of the failed catalog call might
// succeed: the catalog was unreachable, or answered 429 or a 5xx status.
// Nothing in this module retries on its own.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, catalog.ErrUpstreamUnavailable) {
		return true
	}
	var upErr *catalog.UpstreamError
	if errors.As(err, &upErr) {
		return upErr.StatusCode == http.StatusTooManyRequests || upErr.StatusCode >= 500
	}
	return false
}
