package insights

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

func toTable(t *testing.T, body string) *tabular.Table {
	t.Helper()
	p, err := tabular.Decode([]byte(body))
	require.NoError(t, err)
	return tabular.ToTable(p)
}

func findInsight(t *testing.T, list []Insight, title string) Insight {
	t.Helper()
	for _, in := range list {
		if in.Title == title {
			return in
		}
	}
	t.Fatalf("insight %q not found in %d insights", title, len(list))
	return Insight{}
}

func TestPosts_Scenario(t *testing.T) {
	tbl := toTable(t, `[{"id":1,"userId":1,"title":"a"},{"id":2,"userId":2,"title":"bb"}]`)
	require.Equal(t, 2, tbl.Len())

	out := Compute(catalog.Posts, tbl)

	hist := findInsight(t, out, "Posts per user")
	require.Len(t, hist.Buckets, 2)
	assert.Equal(t, Bucket{Label: "1", Count: 1}, hist.Buckets[0])
	assert.Equal(t, Bucket{Label: "2", Count: 1}, hist.Buckets[1])

	avg := findInsight(t, out, "Average title length")
	assert.Equal(t, "1.5 characters", avg.Value)
}

func TestPosts_HistogramSortedAscending(t *testing.T) {
	tbl := toTable(t, `[
		{"userId":10,"title":"x"},
		{"userId":2,"title":"y"},
		{"userId":2,"title":"z"},
		{"userId":1,"title":"w"}
	]`)

	hist := findInsight(t, Compute(catalog.Posts, tbl), "Posts per user")
	require.Len(t, hist.Buckets, 3)
	// Numeric ascending, not lexical: 1, 2, 10.
	assert.Equal(t, []Bucket{{"1", 1}, {"2", 2}, {"10", 1}}, hist.Buckets)
}

func TestPosts_MissingColumnsSkipped(t *testing.T) {
	tbl := toTable(t, `[{"id":1},{"id":2}]`)
	assert.Empty(t, Compute(catalog.Posts, tbl))
}

func TestPosts_NullGroupKeptAsOwnBucket(t *testing.T) {
	tbl := toTable(t, `[{"userId":1,"title":"a"},{"userId":null,"title":"b"},{"title":"c"}]`)

	hist := findInsight(t, Compute(catalog.Posts, tbl), "Posts per user")
	var none *Bucket
	for i := range hist.Buckets {
		if hist.Buckets[i].Label == "(none)" {
			none = &hist.Buckets[i]
		}
	}
	require.NotNil(t, none, "absent/null group must not be dropped")
	assert.Equal(t, 2, none.Count)
}

func TestComments_TopTen(t *testing.T) {
	body := `[`
	// 12 distinct posts; post p gets p comments for p in 1..12.
	sep := ""
	for p := 1; p <= 12; p++ {
		for i := 0; i < p; i++ {
			body += sep + `{"postId":` + strconv.Itoa(p) + `,"id":` + strconv.Itoa(p*100+i) + `}`
			sep = ","
		}
	}
	body += `]`
	tbl := toTable(t, body)

	out := Compute(catalog.Comments, tbl)
	top := findInsight(t, out, "Top 10 posts by comment count")

	require.Len(t, top.Buckets, 10)
	assert.Equal(t, "12", top.Buckets[0].Label)
	for i := 1; i < len(top.Buckets); i++ {
		assert.GreaterOrEqual(t, top.Buckets[i-1].Count, top.Buckets[i].Count, "counts must be non-increasing")
	}
}

func TestComments_FewerGroupsThanTen(t *testing.T) {
	tbl := toTable(t, `[{"postId":1},{"postId":1},{"postId":2}]`)
	top := findInsight(t, Compute(catalog.Comments, tbl), "Top 10 posts by comment count")
	require.Len(t, top.Buckets, 2)
	assert.Equal(t, Bucket{Label: "1", Count: 2}, top.Buckets[0])
}

func TestComments_TiesKeepFirstEncounteredOrder(t *testing.T) {
	tbl := toTable(t, `[{"postId":7},{"postId":3},{"postId":9}]`)
	top := findInsight(t, Compute(catalog.Comments, tbl), "Top 10 posts by comment count")
	require.Len(t, top.Buckets, 3)
	assert.Equal(t, "7", top.Buckets[0].Label)
	assert.Equal(t, "3", top.Buckets[1].Label)
	assert.Equal(t, "9", top.Buckets[2].Label)
}

func TestTodos_CompletionRate(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		completed string
		rate      string
	}{
		{"all complete", `[{"completed":true},{"completed":true}]`, "2", "100.0%"},
		{"none complete", `[{"completed":false},{"completed":false}]`, "0", "0.0%"},
		{"one third", `[{"completed":true},{"completed":false},{"completed":false}]`, "1", "33.3%"},
		{"empty table", `[]`, "0", "0.0%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := toTable(t, tt.body)
			if tbl.Len() == 0 {
				// Zero-row tables carry no columns, so the computer skips.
				// Feed a synthetic table that has the column but no rows.
				tbl = &tabular.Table{Columns: []string{"completed"}}
			}
			out := Compute(catalog.Todos, tbl)
			assert.Equal(t, tt.completed, findInsight(t, out, "Completed").Value)
			assert.Equal(t, tt.rate, findInsight(t, out, "Completion rate").Value)
		})
	}
}

func TestTodos_Breakdown(t *testing.T) {
	tbl := toTable(t, `[{"completed":true},{"completed":false},{"completed":false}]`)
	breakdown := findInsight(t, Compute(catalog.Todos, tbl), "Status breakdown")
	assert.Equal(t, []Bucket{{"Completed", 1}, {"Pending", 2}}, breakdown.Buckets)
}

func TestAlbums_Histogram(t *testing.T) {
	tbl := toTable(t, `[{"userId":2},{"userId":1},{"userId":2}]`)
	hist := findInsight(t, Compute(catalog.Albums, tbl), "Albums per user")
	assert.Equal(t, []Bucket{{"1", 1}, {"2", 2}}, hist.Buckets)
}

func TestPhotos_Insights(t *testing.T) {
	body := `[
		{"albumId":1,"thumbnailUrl":"https://img/1t","title":"a very long photo title that should be cut off"},
		{"albumId":1,"thumbnailUrl":"https://img/2t","title":"short"},
		{"albumId":2,"thumbnailUrl":"https://img/3t","title":"third"}
	]`
	tbl := toTable(t, body)
	out := Compute(catalog.Photos, tbl)

	assert.Equal(t, "3", findInsight(t, out, "Total photos").Value)

	top := findInsight(t, out, "Top 10 albums by photo count")
	assert.Equal(t, Bucket{Label: "1", Count: 2}, top.Buckets[0])

	gallery := findInsight(t, out, "Sample photos")
	require.Len(t, gallery.Lines, 3)
	assert.Contains(t, gallery.Lines[0], "https://img/1t")
	assert.Contains(t, gallery.Lines[0], "a very long photo title that s")
	assert.NotContains(t, gallery.Lines[0], "cut off")
}

func TestPhotos_GalleryCapsAtSix(t *testing.T) {
	body := `[`
	sep := ""
	for i := 1; i <= 9; i++ {
		body += sep + `{"albumId":1,"thumbnailUrl":"https://img/` + strconv.Itoa(i) + `","title":"p"}`
		sep = ","
	}
	body += `]`
	gallery := findInsight(t, Compute(catalog.Photos, toTable(t, body)), "Sample photos")
	assert.Len(t, gallery.Lines, 6)
}

func TestUsers_Cards(t *testing.T) {
	body := `[{
		"id":1,"name":"Leanne Graham","username":"Bret","email":"leanne@april.biz",
		"address":{"street":"Kulas Light","city":"Gwenborough"},
		"company":{"name":"Romaguera-Crona"}
	},{
		"id":2,"name":"Ervin Howell"
	}]`
	out := Compute(catalog.Users, toTable(t, body))
	require.Len(t, out, 2)

	first := out[0]
	assert.Equal(t, "User 1: Leanne Graham", first.Title)
	assert.Contains(t, first.Lines, "Username: Bret")
	assert.Contains(t, first.Lines, "Email: leanne@april.biz")
	assert.Contains(t, first.Lines, "Phone: N/A")
	assert.Contains(t, first.Lines, "Address: Kulas Light, Gwenborough")
	assert.Contains(t, first.Lines, "Company: Romaguera-Crona")

	second := out[1]
	assert.Equal(t, "User 2: Ervin Howell", second.Title)
	assert.Contains(t, second.Lines, "Username: N/A")
	// No address/company keys means no address/company lines.
	for _, line := range second.Lines {
		assert.NotContains(t, line, "Address:")
		assert.NotContains(t, line, "Company:")
	}
}

func TestCompute_UnknownResource(t *testing.T) {
	tbl := toTable(t, `[{"id":1}]`)
	assert.Nil(t, Compute(catalog.Resource{Name: "Widgets"}, tbl))
	assert.Nil(t, Compute(catalog.Posts, nil))
}

func TestIsTruthy(t *testing.T) {
	assert.True(t, isTruthy(true))
	assert.True(t, isTruthy(float64(1)))
	assert.True(t, isTruthy("yes"))
	assert.False(t, isTruthy(false))
	assert.False(t, isTruthy(float64(0)))
	assert.False(t, isTruthy(""))
	assert.False(t, isTruthy("false"))
	assert.False(t, isTruthy(nil))
}
