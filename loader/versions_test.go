package loader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestYarnBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/versions/yarn/1.17":
			w.Write([]byte(`[
				{"gameVersion": "1.17", "separator": "+build.", "build": 9, "version": "1.17+build.9", "stable": true},
				{"gameVersion": "1.17", "separator": "+build.", "build": 13, "version": "1.17+build.13", "stable": true},
				{"gameVersion": "1.17.1", "separator": "+build.", "build": 40, "version": "1.17.1+build.40", "stable": true}
			]`))
		case "/versions/yarn/1.99":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewVersionSearcher()
	s.YarnMetaURL = srv.URL + "/versions/yarn"
	ctx := context.Background()

	builds, err := s.YarnBuilds(ctx, "1.17")
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, 13, builds[0].Build)

	build, err := s.LatestYarnBuild(ctx, "1.17")
	require.NoError(t, err)
	assert.Equal(t, "13", build)

	_, err = s.LatestYarnBuild(ctx, "1.99")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.LatestYarnBuild(ctx, "unknown")
	assert.ErrorContains(t, err, "HTTP 404")
}
