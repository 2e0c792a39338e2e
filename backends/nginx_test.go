package backends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablefs/tablefs-querier/core"
)

func TestNginxFetch(t *testing.T) {
	var gotAcceptEncoding string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/cpu.csv":
			gotAcceptEncoding = r.Header.Get("Accept-Encoding")
			w.Header().Set("Content-Type", "text/csv")
			w.Write([]byte("a,b\n1,2\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	nginx, err := NewNginx(srv.URL+"/data/", srv.Client())
	require.NoError(t, err)

	resp, err := nginx.Fetch(context.Background(), "cpu.csv", true)
	require.NoError(t, err)
	assert.Equal(t, "cpu.csv", resp.Path)
	assert.Equal(t, "a,b\n1,2\n", string(resp.Body))
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))
	assert.Equal(t, "identity", gotAcceptEncoding)
}

func TestNginxFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	nginx, err := NewNginx(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = nginx.Fetch(context.Background(), "missing.csv", false)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestNginxFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	nginx, err := NewNginx(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = nginx.Fetch(context.Background(), "cpu.csv", false)
	var fetchErr *core.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "cpu.csv", fetchErr.Path)
}

func TestNginxList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/metrics/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"name":"cpu.csv","type":"file","mtime":"Mon, 01 Jan 2024 00:00:00 GMT","size":120},
			{"name":"mem.csv","type":"file","mtime":"Mon, 01 Jan 2024 00:00:00 GMT","size":98},
			{"name":"archive","type":"directory","mtime":"Mon, 01 Jan 2024 00:00:00 GMT"}
		]`))
	}))
	defer srv.Close()

	nginx, err := NewNginx(srv.URL, srv.Client())
	require.NoError(t, err)

	info, err := nginx.List(context.Background(), "metrics")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Count)
	assert.Equal(t, []string{"cpu.csv", "mem.csv", "archive"}, info.Files)
}

func TestNginxListMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>autoindex off</html>"))
	}))
	defer srv.Close()

	nginx, err := NewNginx(srv.URL, srv.Client())
	require.NoError(t, err)

	_, err = nginx.List(context.Background(), "")
	var fetchErr *core.FetchError
	assert.ErrorAs(t, err, &fetchErr)
}
