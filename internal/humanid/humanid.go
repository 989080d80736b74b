// Package humanid generates identifiers people can read aloud.
//
// A random UUID is folded down to a few bytes and each byte is spelled as a
// word, giving digests like "nine-alpha-oxygen-mango".
package humanid

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultWords is the number of words in a digest.
const DefaultWords = 4

// ErrTooFewBytes is returned when the input is shorter than the requested digest.
var ErrTooFewBytes = errors.New("humanid: fewer input bytes than words")

// Hash is a human-readable digest together with the UUID it was derived from.
type Hash struct {
	Digest string
	UUID   uuid.UUID
}

// ID joins the digest with the first eight hex digits of the UUID, so two
// hashes with the same digest still get distinct ids.
func (h Hash) ID() string {
	return h.Digest + "-" + h.UUID.String()[:8]
}

// String returns the digest.
func (h Hash) String() string { return h.Digest }

// New returns a Hash for a fresh random UUID.
func New() Hash {
	return FromUUID(uuid.New())
}

// NewID is shorthand for New().ID().
func NewID() string {
	return New().ID()
}

// FromUUID derives the Hash for u.
func FromUUID(u uuid.UUID) Hash {
	digest, err := Humanize(u[:], DefaultWords)
	if err != nil {
		// A UUID always has 16 bytes.
		panic(err)
	}
	return Hash{Digest: digest, UUID: u}
}

// Humanize folds b into words bytes and spells each one from the word list.
func Humanize(b []byte, words int) (string, error) {
	folded, err := compress(b, words)
	if err != nil {
		return "", err
	}
	out := make([]string, len(folded))
	for i, c := range folded {
		out[i] = wordlist[c]
	}
	return strings.Join(out, "-"), nil
}

// compress splits b into target segments and XORs each segment into one byte.
// The last segment absorbs any remainder.
func compress(b []byte, target int) ([]byte, error) {
	if target < 1 {
		return nil, fmt.Errorf("humanid: word count must be positive, got %d", target)
	}
	if len(b) < target {
		return nil, fmt.Errorf("%w: %d bytes for %d words", ErrTooFewBytes, len(b), target)
	}

	size := len(b) / target
	out := make([]byte, target)
	for i := 0; i < target; i++ {
		start := i * size
		end := start + size
		if i == target-1 {
			end = len(b)
		}
		var x byte
		for _, c := range b[start:end] {
			x ^= c
		}
		out[i] = x
	}
	return out, nil
}
