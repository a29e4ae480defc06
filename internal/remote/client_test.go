package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UpsertSendsAuthAndBody(t *testing.T) {
	var gotPath, gotAuth, gotUser string
	var gotBody Row
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUser = r.Header.Get("X-User-ID")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", "user-1")
	err := c.Upsert(context.Background(), "songs", "abc", Row{"title": "Zombie"})
	require.NoError(t, err)

	assert.Equal(t, "PUT /api/songs/abc", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "Zombie", gotBody["title"])
}

func TestClient_DeleteTreatsNotFoundAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", "user-1")
	assert.NoError(t, c.Delete(context.Background(), "songs", "gone"))
}

func TestClient_SelectAllDecodesRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/api/practices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"p1","minutes_played":20},{"id":"p2","minutes_played":35}]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", "user-1")
	rows, err := c.SelectAll(context.Background(), "practices")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "p1", rows[0]["id"])
}

func TestClient_ServerErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "secret", "user-1")
	err := c.Upsert(context.Background(), "songs", "abc", Row{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
