package storage

import (
	"math"
	"slices"

	"github.com/poiesic/passage/core"
)

// NormalizeVector returns v scaled to unit length.
// A zero vector is returned as a zero vector.
func NormalizeVector(v []float32) []float32 {
	if len(v) == 0 {
		return v
	}

	magnitude := float32(math.Sqrt(float64(DotProduct(v, v))))
	result := make([]float32, len(v))
	if magnitude == 0 {
		return result
	}
	for i, val := range v {
		result[i] = val / magnitude
	}
	return result
}

// DotProduct sums the pairwise products over the shorter of the two vectors.
func DotProduct(a, b []float32) float32 {
	var sum float32
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// CosineSimilarity returns the cosine of the angle between a and b.
// Vectors of different length, or with zero magnitude, score 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := DotProduct(a, a)
	nb := DotProduct(b, b)
	if na == 0 || nb == 0 {
		return 0
	}
	return DotProduct(a, b) / float32(math.Sqrt(float64(na))*math.Sqrt(float64(nb)))
}

// RankResults sorts results by score descending and truncates to limit.
// A non-positive limit keeps every result.
func RankResults(results []*core.SearchResult, limit int) []*core.SearchResult {
	slices.SortStableFunc(results, func(a, b *core.SearchResult) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
