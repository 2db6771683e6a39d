package graph

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Tokens are runs of two or more letters, digits or underscores.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// tfidfVectors turns documents into l2-normalized tf-idf vectors over a
// shared vocabulary capped at maxFeatures terms. Terms are ranked by
// total corpus count, ties broken lexicographically. The idf is the
// smoothed form ln((1+n)/(1+df)) + 1, so no weight is ever zero for a
// term that occurs in a document.
//
// Vectors are sparse maps keyed by feature index. Because they are
// l2-normalized, cosine similarity reduces to a dot product.
func tfidfVectors(docs []string, maxFeatures int) []map[int]float64 {
	n := len(docs)
	tokenized := make([][]string, n)
	totalCount := make(map[string]int)
	docFreq := make(map[string]int)

	for i, doc := range docs {
		tokens := tokenRe.FindAllString(strings.ToLower(doc), -1)
		tokenized[i] = tokens
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			totalCount[tok]++
			if !seen[tok] {
				seen[tok] = true
				docFreq[tok]++
			}
		}
	}

	terms := make([]string, 0, len(totalCount))
	for term := range totalCount {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totalCount[terms[i]] != totalCount[terms[j]] {
			return totalCount[terms[i]] > totalCount[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if maxFeatures > 0 && len(terms) > maxFeatures {
		terms = terms[:maxFeatures]
	}

	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	for i, term := range terms {
		index[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+docFreq[term])) + 1
	}

	vectors := make([]map[int]float64, n)
	for i, tokens := range tokenized {
		vec := make(map[int]float64)
		for _, tok := range tokens {
			if fi, ok := index[tok]; ok {
				vec[fi] += idf[fi]
			}
		}
		var norm float64
		for _, w := range vec {
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for fi, w := range vec {
				vec[fi] = w / norm
			}
		}
		vectors[i] = vec
	}
	return vectors
}

// dotSparse is the cosine similarity of two l2-normalized sparse vectors.
func dotSparse(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for fi, w := range a {
		dot += w * b[fi]
	}
	return dot
}
