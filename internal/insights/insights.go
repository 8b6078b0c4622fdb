// Package insights computes per-resource derived summaries from a table.
package insights

import (
	"sort"
	"strconv"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

// Insight is one named summary. Exactly one of Value, Buckets or Lines is
// populated: a scalar metric, an ordered set of grouped counts, or a list
// of detail lines.
type Insight struct {
	Title   string
	Value   string
	Buckets []Bucket
	Lines   []string
}

// Bucket is one group in a histogram or top-N ranking.
type Bucket struct {
	Label string
	Count int
}

// Computer derives the summaries for one resource type. Implementations are
// pure functions of the table and must tolerate missing columns by skipping
// the affected insight.
type Computer interface {
	Compute(t *tabular.Table) []Insight
}

var computers = map[string]Computer{
	catalog.Posts.Name:    postsComputer{},
	catalog.Comments.Name: commentsComputer{},
	catalog.Albums.Name:   albumsComputer{},
	catalog.Photos.Name:   photosComputer{},
	catalog.Todos.Name:    todosComputer{},
	catalog.Users.Name:    usersComputer{},
}

// Compute returns the insights for a resource. Unknown resources and nil
// tables yield no insights.
func Compute(res catalog.Resource, t *tabular.Table) []Insight {
	c, ok := computers[res.Name]
	if !ok || t == nil {
		return nil
	}
	return c.Compute(t)
}

// noneLabel groups rows whose grouping value is absent or null. They form
// their own bucket rather than being dropped.
const noneLabel = "(none)"

// groupCounts tallies rows by the given column, buckets in first-seen
// order. Returns nil when the column is absent from the table.
func groupCounts(t *tabular.Table, col string) []Bucket {
	if !t.HasColumn(col) {
		return nil
	}

	index := make(map[string]int)
	var buckets []Bucket
	for _, row := range t.Rows {
		label := groupLabel(row[col])
		if i, seen := index[label]; seen {
			buckets[i].Count++
			continue
		}
		index[label] = len(buckets)
		buckets = append(buckets, Bucket{Label: label, Count: 1})
	}
	return buckets
}

func groupLabel(v any) string {
	if v == nil {
		return noneLabel
	}
	return tabular.FormatCell(v)
}

// sortByLabel orders buckets ascending by group key, numerically when every
// label parses as a number.
func sortByLabel(buckets []Bucket) {
	numeric := true
	for _, b := range buckets {
		if _, err := strconv.ParseFloat(b.Label, 64); err != nil {
			numeric = false
			break
		}
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		if numeric {
			a, _ := strconv.ParseFloat(buckets[i].Label, 64)
			b, _ := strconv.ParseFloat(buckets[j].Label, 64)
			return a < b
		}
		return buckets[i].Label < buckets[j].Label
	})
}

// topN returns the n largest buckets, descending by count. The sort is
// stable so ties keep first-encountered order.
func topN(buckets []Bucket, n int) []Bucket {
	out := make([]Bucket, len(buckets))
	copy(out, buckets)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// isTruthy mirrors loose boolean coercion for JSON cell values.
func isTruthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != "" && val != "false" && val != "0"
	default:
		return false
	}
}

// formatPercent renders a ratio as a percentage with one decimal place.
func formatPercent(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64) + "%"
}
