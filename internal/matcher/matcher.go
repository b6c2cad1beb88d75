// Package matcher provides the pure string-similarity scoring used to pick
// search candidates and to match school names. No I/O happens here.
package matcher

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// TitleAuthorScore scores a search candidate against the queried title and
// author. The title similarity is weighted 70%, the author similarity 30%.
// When the query has no author, the author term contributes zero.
// The result is in [0, 1].
func TitleAuthorScore(candidateTitle, candidateAuthor, queryTitle, queryAuthor string) float64 {
	titleScore := similarity(queryTitle, candidateTitle)

	authorScore := 0.0
	if strings.TrimSpace(queryAuthor) != "" {
		authorScore = similarity(queryAuthor, candidateAuthor)
	}

	return 0.7*titleScore + 0.3*authorScore
}

// similarity is a token-set ratio: word order and duplicates are ignored.
func similarity(a, b string) float64 {
	return float64(fuzzy.TokenSetRatio(a, b)) / 100.0
}

// SchoolNameMatches reports whether two school names refer to the same school,
// tolerating spacing and casing variance. After stripping all whitespace and
// lower-casing, one name must contain the other. The containment is loose on
// purpose: short names can match several schools, and callers surface that
// ambiguity instead of resolving it here.
func SchoolNameMatches(candidateName, queryName string) bool {
	c := normalizeName(candidateName)
	q := normalizeName(queryName)
	if c == "" || q == "" {
		return false
	}
	return strings.Contains(c, q) || strings.Contains(q, c)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
