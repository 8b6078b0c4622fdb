package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/apidash/internal/catalog"
	"github.com/leapstack-labs/apidash/internal/tabular"
	"github.com/leapstack-labs/apidash/internal/testutil"
)

func TestBuildURL_RecordID(t *testing.T) {
	c := New("http://api.test", 0, nil)

	// For every resource, a positive id yields a /N suffix and never a
	// query filter, even when an owner id is also set.
	for _, res := range catalog.All() {
		for _, id := range []int{1, 7, 100} {
			url := c.BuildURL(Request{Resource: res, ID: id, UserID: 3})
			assert.True(t, strings.HasSuffix(url, fmt.Sprintf("/%s/%d", res.Path, id)), url)
			assert.NotContains(t, url, "?")
		}
	}
}

func TestBuildURL_OwnerFilter(t *testing.T) {
	c := New("http://api.test", 0, nil)

	url := c.BuildURL(Request{Resource: catalog.Posts, UserID: 4})
	assert.Equal(t, "http://api.test/posts?userId=4", url)

	// Every other resource ignores the owner filter.
	for _, res := range []catalog.Resource{catalog.Comments, catalog.Albums, catalog.Photos, catalog.Todos, catalog.Users} {
		url := c.BuildURL(Request{Resource: res, UserID: 4})
		assert.Equal(t, "http://api.test/"+res.Path, url)
	}
}

func TestBuildURL_FullCollection(t *testing.T) {
	c := New("http://api.test", 0, nil)
	assert.Equal(t, "http://api.test/todos", c.BuildURL(Request{Resource: catalog.Todos}))
}

func TestFetch_Collection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/posts", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1,"userId":1,"title":"a"},{"id":2,"userId":2,"title":"bb"}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, testutil.NewTestLogger(t))
	res, err := c.Fetch(context.Background(), Request{Resource: catalog.Posts})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, tabular.KindList, res.Payload.Kind)
	assert.Equal(t, 2, res.Payload.Len())
	assert.False(t, res.NoData())
	assert.JSONEq(t, `[{"id":1,"userId":1,"title":"a"},{"id":2,"userId":2,"title":"bb"}]`, string(res.Raw))
}

func TestFetch_SingleRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/3", r.URL.Path)
		fmt.Fprint(w, `{"id":3,"name":"Clementine"}`)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	res, err := c.Fetch(context.Background(), Request{Resource: catalog.Users, ID: 3})
	require.NoError(t, err)

	assert.Equal(t, tabular.KindRecord, res.Payload.Kind)
	assert.Equal(t, 1, res.Payload.Len())
}

func TestFetch_OwnerFilterForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("userId"))
		fmt.Fprint(w, `[{"id":11,"userId":2}]`)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	res, err := c.Fetch(context.Background(), Request{Resource: catalog.Posts, UserID: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Payload.Len())
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "{}", http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	_, err := c.Fetch(context.Background(), Request{Resource: catalog.Posts, ID: 999})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := New(srv.URL, 20*time.Millisecond, nil)
	_, err := c.Fetch(context.Background(), Request{Resource: catalog.Todos})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch Todos")
}

func TestFetch_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	res, err := c.Fetch(context.Background(), Request{Resource: catalog.Albums})
	require.NoError(t, err)
	assert.True(t, res.NoData())
}

func TestFetch_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id":`)
	}))
	defer srv.Close()

	c := New(srv.URL, 0, nil)
	_, err := c.Fetch(context.Background(), Request{Resource: catalog.Posts})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON payload")
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, 0, nil)
	_, err := c.Fetch(ctx, Request{Resource: catalog.Posts})
	require.Error(t, err)
}
