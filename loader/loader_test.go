package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zipOf(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestID(t *testing.T) {
	tests := []struct {
		id       ID
		str      string
		fileName string
	}{
		{ID{Source: Blackstone, MCVersion: "1.21"}, "blackstone/1.21", "blackstone-1.21.json"},
		{ID{Source: Parchment, MCVersion: "1.21", Version: "2024.07.28"}, "parchment/1.21/2024.07.28", "parchment-1.21-2024.07.28.json"},
		{ID{Source: Yarn, MCVersion: "1.21", Version: "9"}, "yarn/1.21/9", "yarn-1.21-9.tiny"},
		{ID{Source: Intermediary, MCVersion: "1.21"}, "intermediary/1.21", "intermediary-1.21.tiny"},
	}
	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.id.String())
			assert.Equal(t, tt.fileName, tt.id.FileName())
		})
	}
}

func TestTemplateExpand(t *testing.T) {
	got := DefaultTemplates[Yarn].Expand(ID{Source: Yarn, MCVersion: "1.21", Version: "9"})
	assert.Equal(t, "https://maven.fabricmc.net/net/fabricmc/yarn/1.21+build.9/yarn-1.21+build.9-v2.jar", got)
}

func TestExtractZipEntry(t *testing.T) {
	data := zipOf(t, map[string]string{"mappings/mappings.tiny": "tiny\t2\t0\ta\tb\n"})

	got, err := ExtractZipEntry(data, "mappings/mappings.tiny")
	require.NoError(t, err)
	assert.Equal(t, "tiny\t2\t0\ta\tb\n", string(got))

	_, err = ExtractZipEntry(data, "missing.tiny")
	assert.Error(t, err)

	_, err = ExtractZipEntry([]byte("not a zip"), "x")
	assert.Error(t, err)
}

func TestHTTPFetcher(t *testing.T) {
	jar := zipOf(t, map[string]string{"mappings/mappings.tiny": "yarn"})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/yarn/1.21+build.9.jar":
			w.Write(jar)
		case "/intermediary/1.21.tiny":
			w.Write([]byte("intermediary"))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewHTTPFetcher()
	f.Templates = map[Source]Template{
		Yarn:         {URL: srv.URL + "/yarn/{mc_version}+build.{version}.jar", Entry: "mappings/mappings.tiny"},
		Intermediary: {URL: srv.URL + "/intermediary/{mc_version}.tiny"},
		Parchment:    {URL: srv.URL + "/parchment/{mc_version}.zip"},
		Crane:        {URL: srv.URL + "/broken"},
	}
	ctx := context.Background()

	got, err := f.Fetch(ctx, ID{Source: Yarn, MCVersion: "1.21", Version: "9"})
	require.NoError(t, err)
	assert.Equal(t, "yarn", string(got))

	got, err = f.Fetch(ctx, ID{Source: Intermediary, MCVersion: "1.21"})
	require.NoError(t, err)
	assert.Equal(t, "intermediary", string(got))

	_, err = f.Fetch(ctx, ID{Source: Parchment, MCVersion: "1.21"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.Fetch(ctx, ID{Source: Crane, MCVersion: "1.21"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "HTTP 500")

	_, err = f.Fetch(ctx, ID{Source: Blackstone, MCVersion: "1.21"})
	assert.ErrorContains(t, err, "no URL template")
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	id := ID{Source: Crane, MCVersion: "1.21", Version: "3"}
	require.NoError(t, os.WriteFile(filepath.Join(dir, id.FileName()), []byte("crane"), 0o644))

	f := DirFetcher{Dir: dir}
	got, err := f.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "crane", string(got))

	_, err = f.Fetch(context.Background(), ID{Source: Crane, MCVersion: "1.20"})
	assert.ErrorIs(t, err, ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Fetch(ctx, id)
	assert.ErrorIs(t, err, context.Canceled)
}

type countingFetcher struct {
	calls atomic.Int32
	data  []byte
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, id ID) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(id.String()+":"), f.data...), nil
}

func TestCachedFetcher(t *testing.T) {
	next := &countingFetcher{data: []byte("payload")}
	f, err := NewCachedFetcher("", next)
	require.NoError(t, err)
	defer f.Close()

	id := ID{Source: Yarn, MCVersion: "1.21", Version: "9"}
	for range 3 {
		got, err := f.Fetch(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "yarn/1.21/9:payload", string(got))
	}
	assert.Equal(t, int32(1), next.calls.Load())

	require.NoError(t, f.Evict(id))
	_, err = f.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedFetcherConcurrent(t *testing.T) {
	next := &countingFetcher{data: []byte("x")}
	f, err := NewCachedFetcher("", next)
	require.NoError(t, err)
	defer f.Close()

	id := ID{Source: Intermediary, MCVersion: "1.21"}
	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := f.Fetch(context.Background(), id)
			assert.NoError(t, err)
			results[i] = string(got)
		}()
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "intermediary/1.21:x", r)
	}
	assert.LessOrEqual(t, next.calls.Load(), int32(len(results)))
}

func TestCachedFetcherErrorsAreNotCached(t *testing.T) {
	boom := errors.New("boom")
	next := &countingFetcher{err: boom}
	f, err := NewCachedFetcher("", next)
	require.NoError(t, err)
	defer f.Close()

	id := ID{Source: Crane, MCVersion: "1.21", Version: "1"}
	_, err = f.Fetch(context.Background(), id)
	assert.ErrorIs(t, err, boom)

	next.err = nil
	_, err = f.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int32(2), next.calls.Load())
}

func TestCachedFetcherPersists(t *testing.T) {
	dir := t.TempDir()
	id := ID{Source: Blackstone, MCVersion: "1.21"}

	f, err := NewCachedFetcher(dir, &countingFetcher{data: []byte("1")})
	require.NoError(t, err)
	_, err = f.Fetch(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	next := &countingFetcher{data: []byte("2")}
	f, err = NewCachedFetcher(dir, next)
	require.NoError(t, err)
	defer f.Close()
	got, err := f.Fetch(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "blackstone/1.21:1", string(got))
	assert.Zero(t, next.calls.Load())
}
