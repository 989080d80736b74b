// Package search keeps an inverted index from title keywords to catalog
// videos and answers multi-keyword queries with nearest-token matching.
package search

import (
	"sort"
	"strings"
	"sync"

	"vidlists/catalog"
)

// Index maps keyword tokens to the set of videos whose titles contain them.
// The sorted token slice always mirrors the key set of the bucket map.
type Index struct {
	mu      sync.RWMutex
	buckets map[string]map[int64]*catalog.Video
	tokens  []string
}

// Result is the answer to a query.
type Result struct {
	// Keywords are the distinct index tokens the query keywords resolved to, in
	// query order.
	Keywords []string
	// Videos are the matches, literal title matches first.
	Videos []*catalog.Video
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{buckets: make(map[string]map[int64]*catalog.Video)}
}

// Build adds videos to the index. Existing buckets are kept and extended; a
// video already present in a bucket is replaced, never duplicated.
func (ix *Index) Build(videos []*catalog.Video) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.add(videos)
}

// Rebuild discards the current index and builds it from videos.
func (ix *Index) Rebuild(videos []*catalog.Video) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.buckets = make(map[string]map[int64]*catalog.Video)
	ix.add(videos)
}

// add must be called with mu held.
func (ix *Index) add(videos []*catalog.Video) {
	for _, v := range videos {
		for _, kw := range Tokenize(v.Title) {
			bucket, ok := ix.buckets[kw]
			if !ok {
				bucket = make(map[int64]*catalog.Video)
				ix.buckets[kw] = bucket
			}
			bucket[v.ID] = v
		}
	}

	tokens := make([]string, 0, len(ix.buckets))
	for kw := range ix.buckets {
		tokens = append(tokens, kw)
	}
	sort.Strings(tokens)
	ix.tokens = tokens
}

// Nearest returns the smallest indexed token that sorts at or after keyword.
// It is a prefix-tolerant match: "cata" resolves to "catalog".
func (ix *Index) Nearest(keyword string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.nearest(keyword)
}

func (ix *Index) nearest(keyword string) (string, bool) {
	i := sort.SearchStrings(ix.tokens, keyword)
	if i == len(ix.tokens) {
		return "", false
	}
	return ix.tokens[i], true
}

// Search answers a free-text query.
//
// Each query keyword is resolved to its nearest index token; keywords with no
// such token are dropped. The buckets of the resolved tokens are intersected,
// and the surviving videos are ranked with titles containing the whole
// normalized query first. Within each group videos are ordered by ID.
func (ix *Index) Search(query string) Result {
	empty := Result{Keywords: []string{}, Videos: []*catalog.Video{}}
	if query == "" {
		return empty
	}
	kws := keywords(query)
	if len(kws) == 0 {
		return empty
	}

	ix.mu.RLock()
	matched := make([]string, 0, len(kws))
	sets := make([]map[int64]*catalog.Video, 0, len(kws))
	seen := make(map[string]struct{}, len(kws))
	for _, kw := range kws {
		token, ok := ix.nearest(kw)
		if !ok {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		matched = append(matched, token)
		sets = append(sets, ix.buckets[token])
	}
	videos := intersect(sets)
	ix.mu.RUnlock()

	return Result{
		Keywords: matched,
		Videos:   rank(videos, query),
	}
}

// intersect returns the videos present in every set. Zero sets yield nothing.
func intersect(sets []map[int64]*catalog.Video) []*catalog.Video {
	if len(sets) == 0 {
		return nil
	}

	smallest := 0
	for i, s := range sets {
		if len(s) < len(sets[smallest]) {
			smallest = i
		}
	}

	var out []*catalog.Video
	for id, v := range sets[smallest] {
		inAll := true
		for i, s := range sets {
			if i == smallest {
				continue
			}
			if _, ok := s[id]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			out = append(out, v)
		}
	}
	return out
}

// rank puts literal title matches before the rest.
func rank(videos []*catalog.Video, query string) []*catalog.Video {
	sort.Slice(videos, func(i, j int) bool { return videos[i].ID < videos[j].ID })

	q := Normalize(query)
	literal := make([]*catalog.Video, 0, len(videos))
	var rest []*catalog.Video
	for _, v := range videos {
		if strings.Contains(Normalize(v.Title), q) {
			literal = append(literal, v)
		} else {
			rest = append(rest, v)
		}
	}
	return append(literal, rest...)
}

// Tokens returns a copy of the sorted token list.
func (ix *Index) Tokens() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]string(nil), ix.tokens...)
}

// Len returns the number of distinct tokens.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.tokens)
}

// Bucket returns the IDs of the videos indexed under token, in ascending order.
func (ix *Index) Bucket(token string) []int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	bucket := ix.buckets[token]
	ids := make([]int64, 0, len(bucket))
	for id := range bucket {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
