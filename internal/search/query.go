package search

import (
	"math"
	"sort"
	"strings"
	"time"

	"weave/internal/observability"
)

// Result is one ranked search hit. AuthorID is set for posts, Username
// for users; Text carries the post content or user bio.
type Result struct {
	Kind      Kind      `json:"kind"`
	ID        uint      `json:"id"`
	AuthorID  uint      `json:"author_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Text      string    `json:"text"`
	Rank      float64   `json:"rank"`
	CreatedAt time.Time `json:"created_at"`
}

// SearchPosts ranks posts matching the query, treated as a union of terms.
func (idx *Index) SearchPosts(query string, profile Profile, limit int) []Result {
	return idx.search(query, profile, KindPost, limit)
}

// SearchUsers ranks users matching the query.
func (idx *Index) SearchUsers(query string, profile Profile, limit int) []Result {
	return idx.search(query, profile, KindUser, limit)
}

// SearchAll merges post and user rankings into one relevance-ordered
// stream, each result tagged by kind.
func (idx *Index) SearchAll(query string, profile Profile, limit int) []Result {
	start := time.Now()
	defer func() {
		observability.SearchQueryLatency.WithLabelValues(string(profile), "all").
			Observe(time.Since(start).Seconds())
	}()

	posts := idx.rank(Tokenize(profile, query), profile, KindPost)
	users := idx.rank(Tokenize(profile, query), profile, KindUser)
	merged := append(posts, users...)
	sortResults(merged)
	return truncate(merged, limit)
}

func (idx *Index) search(query string, profile Profile, kind Kind, limit int) []Result {
	start := time.Now()
	defer func() {
		observability.SearchQueryLatency.WithLabelValues(string(profile), string(kind)).
			Observe(time.Since(start).Seconds())
	}()

	results := idx.rank(Tokenize(profile, query), profile, kind)
	sortResults(results)
	return truncate(results, limit)
}

// rank scores every document containing at least one query term. The score
// is the sum of weighted term frequencies, scaled by the fraction of query
// terms present so documents matching more of the query rank higher.
func (idx *Index) rank(terms []string, profile Profile, kind Kind) []Result {
	if len(terms) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	unique := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		unique[t] = struct{}{}
	}

	scores := make(map[docKey]float64)
	matched := make(map[docKey]int)
	for term := range unique {
		for key, weight := range idx.postings[profile][term] {
			if key.kind != kind {
				continue
			}
			scores[key] += weight
			matched[key]++
		}
	}

	results := make([]Result, 0, len(scores))
	for key, score := range scores {
		entry := idx.docs[key]
		coverage := float64(matched[key]) / float64(len(unique))
		results = append(results, Result{
			Kind:      key.kind,
			ID:        key.id,
			AuthorID:  entry.authorID,
			Username:  entry.name,
			Text:      entry.text,
			Rank:      math.Round(score*coverage*100) / 100,
			CreatedAt: entry.createdAt,
		})
	}
	return results
}

// sortResults orders by rank descending; ties go to newer posts and to
// alphabetically-first usernames.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rank != results[j].Rank {
			return results[i].Rank > results[j].Rank
		}
		a, b := results[i], results[j]
		if a.Kind == KindUser && b.Kind == KindUser {
			return a.Username < b.Username
		}
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func truncate(results []Result, limit int) []Result {
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}

// boolNode is a parsed boolean query clause.
type boolNode struct {
	op       string // "term" | "phrase" | "and" | "or" | "not"
	term     string
	phrase   []string
	children []boolNode
}

// SearchBoolean evaluates a query with explicit AND/OR/NOT connectives and
// quoted phrases, e.g. `coffee AND "istanbul morning" NOT decaf`. Matching
// documents still get relevance ranks from the positive terms.
func (idx *Index) SearchBoolean(query string, profile Profile, kind Kind, limit int) []Result {
	start := time.Now()
	defer func() {
		observability.SearchQueryLatency.WithLabelValues(string(profile), string(kind)+"_bool").
			Observe(time.Since(start).Seconds())
	}()

	node, positive := parseBoolean(query, profile)
	if len(node.children) == 0 {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matchedKeys []docKey
	for key, entry := range idx.docs {
		if key.kind != kind {
			continue
		}
		if evalBool(node, entry, profile) {
			matchedKeys = append(matchedKeys, key)
		}
	}

	unique := make(map[string]struct{}, len(positive))
	for _, t := range positive {
		unique[t] = struct{}{}
	}

	results := make([]Result, 0, len(matchedKeys))
	for _, key := range matchedKeys {
		entry := idx.docs[key]
		var score float64
		for term := range unique {
			score += entry.terms[profile][term]
		}
		if score == 0 {
			score = 1 // NOT-only or phrase-only queries still need an ordering
		}
		results = append(results, Result{
			Kind:      key.kind,
			ID:        key.id,
			AuthorID:  entry.authorID,
			Username:  entry.name,
			Text:      entry.text,
			Rank:      math.Round(score*100) / 100,
			CreatedAt: entry.createdAt,
		})
	}
	sortResults(results)
	return truncate(results, limit)
}

// parseBoolean splits the query into clauses joined by AND/OR with NOT
// prefixes and quoted phrases. The grammar is flat: NOT binds to the next
// clause, AND/OR associate left to right.
func parseBoolean(query string, profile Profile) (boolNode, []string) {
	raw := splitQuoted(query)
	root := boolNode{op: "and"}
	var positive []string

	negateNext := false
	nextOp := "and"
	for _, tok := range raw {
		switch strings.ToUpper(tok) {
		case "AND":
			nextOp = "and"
			continue
		case "OR":
			nextOp = "or"
			continue
		case "NOT":
			negateNext = true
			continue
		}

		var clause boolNode
		if strings.HasPrefix(tok, "\"") {
			terms := Tokenize(profile, strings.Trim(tok, "\""))
			if len(terms) == 0 {
				continue
			}
			clause = boolNode{op: "phrase", phrase: terms}
			if !negateNext {
				positive = append(positive, terms...)
			}
		} else {
			terms := Tokenize(profile, tok)
			if len(terms) == 0 {
				negateNext = false
				continue
			}
			clause = boolNode{op: "term", term: terms[0]}
			if !negateNext {
				positive = append(positive, terms[0])
			}
		}

		if negateNext {
			clause = boolNode{op: "not", children: []boolNode{clause}}
			negateNext = false
		}
		if nextOp == "or" && len(root.children) > 0 {
			last := root.children[len(root.children)-1]
			root.children[len(root.children)-1] = boolNode{
				op: "or", children: []boolNode{last, clause},
			}
		} else {
			root.children = append(root.children, clause)
		}
		nextOp = "and"
	}
	return root, positive
}

func evalBool(node boolNode, entry *docEntry, profile Profile) bool {
	switch node.op {
	case "term":
		_, ok := entry.terms[profile][node.term]
		return ok
	case "phrase":
		return containsPhrase(entry.tokens[profile], node.phrase)
	case "not":
		return !evalBool(node.children[0], entry, profile)
	case "or":
		for _, c := range node.children {
			if evalBool(c, entry, profile) {
				return true
			}
		}
		return false
	default: // and
		for _, c := range node.children {
			if !evalBool(c, entry, profile) {
				return false
			}
		}
		return true
	}
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(tokens) < len(phrase) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// splitQuoted splits on whitespace while keeping quoted runs together,
// quotes included.
func splitQuoted(s string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	flush := func() {
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			b.WriteRune(r)
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case !inQuote && (r == ' ' || r == '\t' || r == '\n'):
			flush()
		default:
			b.WriteRune(r)
		}
	}
	flush()
	return out
}
