package loader

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
)

const DefaultYarnMetaURL = "https://meta.fabricmc.net/v2/versions/yarn"

// Latest stands for the newest build in a version setting.
const Latest = "latest"

type YarnBuild struct {
	GameVersion string `json:"gameVersion"`
	Separator   string `json:"separator"`
	Build       int    `json:"build"`
	Maven       string `json:"maven"`
	Version     string `json:"version"`
	Stable      bool   `json:"stable"`
}

// VersionSearcher lists published builds of versioned sources.
type VersionSearcher struct {
	YarnMetaURL string
	httpClient  *http.Client
}

func NewVersionSearcher() *VersionSearcher {
	return &VersionSearcher{
		YarnMetaURL: DefaultYarnMetaURL,
		httpClient:  &http.Client{},
	}
}

// YarnBuilds returns the yarn builds for mcVersion, newest first.
func (s *VersionSearcher) YarnBuilds(ctx context.Context, mcVersion string) ([]YarnBuild, error) {
	reqURL := fmt.Sprintf("%s/%s", s.YarnMetaURL, url.PathEscape(mcVersion))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yarn version request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yarn version request returned HTTP %d", resp.StatusCode)
	}

	var builds []YarnBuild
	if err := json.NewDecoder(resp.Body).Decode(&builds); err != nil {
		return nil, fmt.Errorf("failed to decode yarn versions: %w", err)
	}

	builds = slices.DeleteFunc(builds, func(b YarnBuild) bool { return b.GameVersion != mcVersion })
	slices.SortFunc(builds, func(a, b YarnBuild) int { return cmp.Compare(b.Build, a.Build) })
	return builds, nil
}

// LatestYarnBuild returns the newest yarn build number for mcVersion.
func (s *VersionSearcher) LatestYarnBuild(ctx context.Context, mcVersion string) (string, error) {
	builds, err := s.YarnBuilds(ctx, mcVersion)
	if err != nil {
		return "", err
	}
	if len(builds) == 0 {
		return "", fmt.Errorf("yarn for %s: %w", mcVersion, ErrNotFound)
	}
	build := strconv.Itoa(builds[0].Build)
	log.Infof("latest yarn build for %s is %s", mcVersion, build)
	return build, nil
}
