// Package search maintains an in-process full-text index over posts and
// users, kept current by synchronous hooks on the write path.
package search

import (
	"sync"
	"time"

	"weave/internal/models"
	"weave/internal/observability"
)

// Kind tags which entity a document (or combined search result) came from.
type Kind string

const (
	KindPost Kind = "post"
	KindUser Kind = "user"
)

// Field weights: a username hit outranks the same hit in a bio.
const (
	weightPostContent  = 1.0
	weightUserUsername = 2.0
	weightUserBio      = 1.0
)

type docKey struct {
	kind Kind
	id   uint
}

type field struct {
	text   string
	weight float64
}

type docEntry struct {
	key docKey
	// display payload echoed into results
	authorID  uint
	text      string
	createdAt time.Time
	name      string
	// per-profile token stream of all fields in order, for phrase checks
	tokens map[Profile][]string
	// per-profile weighted term frequencies
	terms map[Profile]map[string]float64
}

// Index is a thread-safe inverted index with per-profile postings. All
// writes to searchable entities go through Put/Remove synchronously, so
// queries always see the latest committed content.
type Index struct {
	mu       sync.RWMutex
	docs     map[docKey]*docEntry
	postings map[Profile]map[string]map[docKey]float64
}

// NewIndex creates an empty index covering every tokenization profile.
func NewIndex() *Index {
	idx := &Index{
		docs:     make(map[docKey]*docEntry),
		postings: make(map[Profile]map[string]map[docKey]float64),
	}
	for _, p := range Profiles() {
		idx.postings[p] = make(map[string]map[docKey]float64)
	}
	return idx
}

// IndexPost adds or replaces a post document.
func (idx *Index) IndexPost(post *models.Post) {
	idx.put(&docEntry{
		key:       docKey{KindPost, post.ID},
		authorID:  post.AuthorID,
		text:      post.Content,
		createdAt: post.CreatedAt,
	}, []field{{post.Content, weightPostContent}})
}

// IndexUser adds or replaces a user document.
func (idx *Index) IndexUser(user *models.User) {
	idx.put(&docEntry{
		key:       docKey{KindUser, user.ID},
		text:      user.Bio,
		createdAt: user.CreatedAt,
		name:      user.Username,
	}, []field{
		{user.Username, weightUserUsername},
		{user.Bio, weightUserBio},
	})
}

// RemovePost drops a post from the index.
func (idx *Index) RemovePost(postID uint) { idx.remove(docKey{KindPost, postID}) }

// RemoveUser drops a user from the index.
func (idx *Index) RemoveUser(userID uint) { idx.remove(docKey{KindUser, userID}) }

func (idx *Index) put(entry *docEntry, fields []field) {
	key := entry.key
	entry.tokens = make(map[Profile][]string)
	entry.terms = make(map[Profile]map[string]float64)
	for _, p := range Profiles() {
		terms := make(map[string]float64)
		var stream []string
		for _, f := range fields {
			toks := Tokenize(p, f.text)
			stream = append(stream, toks...)
			for _, t := range toks {
				terms[t] += f.weight
			}
		}
		entry.tokens[p] = stream
		entry.terms[p] = terms
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.dropLocked(key)
	idx.docs[key] = entry
	for p, terms := range entry.terms {
		for term, w := range terms {
			bucket := idx.postings[p][term]
			if bucket == nil {
				bucket = make(map[docKey]float64)
				idx.postings[p][term] = bucket
			}
			bucket[key] = w
		}
	}
	idx.gaugeLocked(key.kind)
}

func (idx *Index) remove(key docKey) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.dropLocked(key)
	idx.gaugeLocked(key.kind)
}

func (idx *Index) dropLocked(key docKey) {
	entry, ok := idx.docs[key]
	if !ok {
		return
	}
	for p, terms := range entry.terms {
		for term := range terms {
			bucket := idx.postings[p][term]
			delete(bucket, key)
			if len(bucket) == 0 {
				delete(idx.postings[p], term)
			}
		}
	}
	delete(idx.docs, key)
}

func (idx *Index) gaugeLocked(kind Kind) {
	var count float64
	for key := range idx.docs {
		if key.kind == kind {
			count++
		}
	}
	observability.SearchIndexSize.WithLabelValues(string(kind)).Set(count)
}

// Size reports the number of indexed documents of a kind.
func (idx *Index) Size(kind Kind) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	n := 0
	for key := range idx.docs {
		if key.kind == kind {
			n++
		}
	}
	return n
}
