package insights

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/leapstack-labs/apidash/internal/tabular"
)

const (
	topGroups      = 10
	galleryRows    = 6
	galleryCaption = 30
)

// postsComputer summarizes posts: a per-author histogram and the average
// title length.
type postsComputer struct{}

func (postsComputer) Compute(t *tabular.Table) []Insight {
	var out []Insight

	if buckets := groupCounts(t, "userId"); buckets != nil {
		sortByLabel(buckets)
		out = append(out, Insight{Title: "Posts per user", Buckets: buckets})
	}

	if t.HasColumn("title") && t.Len() > 0 {
		total := 0
		for _, row := range t.Rows {
			if s, ok := row["title"].(string); ok {
				total += utf8.RuneCountInString(s)
			}
		}
		avg := float64(total) / float64(t.Len())
		out = append(out, Insight{
			Title: "Average title length",
			Value: strconv.FormatFloat(avg, 'f', 1, 64) + " characters",
		})
	}

	return out
}

// commentsComputer ranks the most-commented posts.
type commentsComputer struct{}

func (commentsComputer) Compute(t *tabular.Table) []Insight {
	buckets := groupCounts(t, "postId")
	if buckets == nil {
		return nil
	}
	return []Insight{
		{Title: fmt.Sprintf("Top %d posts by comment count", topGroups), Buckets: topN(buckets, topGroups)},
	}
}

// albumsComputer mirrors the posts histogram for album ownership.
type albumsComputer struct{}

func (albumsComputer) Compute(t *tabular.Table) []Insight {
	buckets := groupCounts(t, "userId")
	if buckets == nil {
		return nil
	}
	sortByLabel(buckets)
	return []Insight{{Title: "Albums per user", Buckets: buckets}}
}

// photosComputer reports the total count, the busiest albums and a short
// gallery preview.
type photosComputer struct{}

func (photosComputer) Compute(t *tabular.Table) []Insight {
	out := []Insight{
		{Title: "Total photos", Value: strconv.Itoa(t.Len())},
	}

	if buckets := groupCounts(t, "albumId"); buckets != nil {
		out = append(out, Insight{
			Title:   fmt.Sprintf("Top %d albums by photo count", topGroups),
			Buckets: topN(buckets, topGroups),
		})
	}

	if t.HasColumn("thumbnailUrl") && t.Len() > 0 {
		n := t.Len()
		if n > galleryRows {
			n = galleryRows
		}
		lines := make([]string, 0, n)
		for _, row := range t.Rows[:n] {
			thumb, _ := row["thumbnailUrl"].(string)
			caption, _ := row["title"].(string)
			lines = append(lines, fmt.Sprintf("%s  %s", thumb, truncate(caption, galleryCaption)))
		}
		out = append(out, Insight{Title: "Sample photos", Lines: lines})
	}

	return out
}

// todosComputer tracks completion: count, rate and a two-bucket breakdown.
type todosComputer struct{}

func (todosComputer) Compute(t *tabular.Table) []Insight {
	if !t.HasColumn("completed") {
		return nil
	}

	completed := 0
	for _, row := range t.Rows {
		if isTruthy(row["completed"]) {
			completed++
		}
	}
	total := t.Len()

	rate := 0.0
	if total > 0 {
		rate = float64(completed) / float64(total) * 100
	}

	return []Insight{
		{Title: "Completed", Value: strconv.Itoa(completed)},
		{Title: "Completion rate", Value: formatPercent(rate)},
		{Title: "Status breakdown", Buckets: []Bucket{
			{Label: "Completed", Count: completed},
			{Label: "Pending", Count: total - completed},
		}},
	}
}

// usersComputer produces a per-user contact card.
type usersComputer struct{}

func (usersComputer) Compute(t *tabular.Table) []Insight {
	out := make([]Insight, 0, t.Len())
	for _, row := range t.Rows {
		card := Insight{
			Title: fmt.Sprintf("User %s: %s", fieldString(row, "id"), fieldString(row, "name")),
			Lines: []string{
				"Username: " + fieldString(row, "username"),
				"Email: " + fieldString(row, "email"),
				"Phone: " + fieldString(row, "phone"),
				"Website: " + fieldString(row, "website"),
			},
		}
		if addr, ok := row["address"].(map[string]any); ok {
			card.Lines = append(card.Lines, fmt.Sprintf("Address: %s, %s",
				nestedString(addr, "street", ""), nestedString(addr, "city", "")))
		}
		if company, ok := row["company"].(map[string]any); ok {
			card.Lines = append(card.Lines, "Company: "+nestedString(company, "name", "N/A"))
		}
		out = append(out, card)
	}
	return out
}

// fieldString formats a top-level field for display, with N/A for missing
// or null values.
func fieldString(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return "N/A"
	}
	return tabular.FormatCell(v)
}

func nestedString(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
