package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/apidash/internal/cli/output"
	"github.com/leapstack-labs/apidash/internal/cli/testutil"
	"github.com/leapstack-labs/apidash/internal/insights"
	"github.com/leapstack-labs/apidash/internal/tabular"
)

func sampleTable(t *testing.T) *tabular.Table {
	t.Helper()
	payload, err := tabular.Decode([]byte(`[
		{"id":1,"title":"alpha","score":null},
		{"id":2,"title":"beta","score":4.5}
	]`))
	require.NoError(t, err)
	return tabular.ToTable(payload)
}

func TestRenderResult_Markdown(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderResult(buf, sampleTable(t), "md"))

	out := buf.String()
	assert.Contains(t, out, "| id | title | score |")
	assert.Contains(t, out, "| --- | --- | --- |")
	assert.Contains(t, out, "| 1 | alpha | NULL |")
	assert.Contains(t, out, "| 2 | beta | 4.5 |")
}

func TestRenderResult_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderResult(buf, sampleTable(t), "json"))
	assert.JSONEq(t, `[
		{"id":1,"title":"alpha","score":null},
		{"id":2,"title":"beta","score":4.5}
	]`, buf.String())
}

func TestRenderResult_CSV(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderResult(buf, sampleTable(t), "csv"))

	out := buf.String()
	assert.Contains(t, out, "id,title,score\n")
	// Null cells export as empty fields.
	assert.Contains(t, out, "1,alpha,\n")
}

func TestRenderResult_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderResult(buf, sampleTable(t), "table"))

	out := buf.String()
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "(2 rows)")
}

func TestRenderResult_EmptyTable(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderResult(buf, &tabular.Table{}, "table"))
	assert.Contains(t, buf.String(), "(0 rows)")
}

func TestRenderBuckets(t *testing.T) {
	tr := testutil.NewTestRenderer(output.ModeMarkdown)

	renderBuckets(tr.Renderer, []insights.Bucket{
		{Label: "1", Count: 4},
		{Label: "2", Count: 2},
	})

	s := tr.Output()
	assert.Contains(t, s, "1")
	assert.Contains(t, s, "4")
	// The largest bucket gets the full bar width.
	assert.Contains(t, s, "████████████████████████████████████████")
	// Markdown mode carries no terminal styling.
	testutil.AssertNoANSI(t, s)
}

func TestRenderRaw(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, renderRaw(buf, []byte(`{"id":1}`)))
	assert.Contains(t, buf.String(), "\"id\": 1")

	buf.Reset()
	require.NoError(t, renderRaw(buf, []byte("not json")))
	assert.Contains(t, buf.String(), "not json")
}

func TestParseBrowseLine(t *testing.T) {
	tests := []struct {
		line     string
		wantName string
		wantID   int
		wantUser int
		wantErr  bool
	}{
		{line: "posts", wantName: "Posts"},
		{line: "posts 7", wantName: "Posts", wantID: 7},
		{line: "posts user=3", wantName: "Posts", wantUser: 3},
		{line: "todos 5 user=2", wantName: "Todos", wantID: 5, wantUser: 2},
		{line: "widgets", wantErr: true},
		{line: "posts user=x", wantErr: true},
		{line: "posts -1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			req, err := parseBrowseLine(tt.line)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, req.Resource.Name)
			assert.Equal(t, tt.wantID, req.ID)
			assert.Equal(t, tt.wantUser, req.UserID)
		})
	}
}
