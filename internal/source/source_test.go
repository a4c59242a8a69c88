package source

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statlake/covidload/schema"
)

const snapshotBody = "date,state,fips,cases,deaths\n2021-03-01,California,06,100,5\n"

func TestHTTPClient_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(snapshotBody))
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	stream, err := client.Fetch(context.Background())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, snapshotBody, string(data))
}

func TestHTTPClient_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}

func TestHTTPClient_Fetch_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	client := NewHTTPClient(srv.URL, time.Second)
	_, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}

func TestFileClient_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "us-states.csv")
	require.NoError(t, os.WriteFile(path, []byte(snapshotBody), 0o644))

	stream, err := NewFileClient(path).Fetch(context.Background())
	require.NoError(t, err)
	defer func() { _ = stream.Close() }()

	data, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, snapshotBody, string(data))
}

func TestFileClient_Fetch_Missing(t *testing.T) {
	_, err := NewFileClient(filepath.Join(t.TempDir(), "nope.csv")).Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrSourceUnavailable)
}
