package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Template locates an artifact. URL may contain {mc_version} and
// {version}; Entry, when set, names the file to extract from the
// downloaded zip.
type Template struct {
	URL   string
	Entry string
}

func (t Template) Expand(id ID) string {
	return strings.NewReplacer("{mc_version}", id.MCVersion, "{version}", id.Version).Replace(t.URL)
}

var DefaultTemplates = map[Source]Template{
	Blackstone: {
		URL:   "https://maven.parchmentmc.org/org/parchmentmc/data/blackstone/{mc_version}/blackstone-{mc_version}.zip",
		Entry: "merged.json",
	},
	Parchment: {
		URL:   "https://maven.parchmentmc.org/org/parchmentmc/data/parchment-{mc_version}/{version}/parchment-{mc_version}-{version}.zip",
		Entry: "parchment.json",
	},
	Crane: {
		URL: "https://maven.architectury.dev/dev/architectury/crane/{mc_version}+build.{version}/crane-{mc_version}+build.{version}-tiny.tiny",
	},
	Intermediary: {
		URL: "https://raw.githubusercontent.com/FabricMC/intermediary/master/mappings/{mc_version}.tiny",
	},
	Yarn: {
		URL:   "https://maven.fabricmc.net/net/fabricmc/yarn/{mc_version}+build.{version}/yarn-{mc_version}+build.{version}-v2.jar",
		Entry: "mappings/mappings.tiny",
	},
}

type HTTPFetcher struct {
	Templates  map[Source]Template
	httpClient *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		Templates:  DefaultTemplates,
		httpClient: &http.Client{},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, id ID) ([]byte, error) {
	tmpl, ok := f.Templates[id.Source]
	if !ok {
		return nil, fmt.Errorf("fetch %s: no URL template for source %q", id, id.Source)
	}
	url := tmpl.Expand(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	log.Infof("downloading %s", url)
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("fetch %s: %w: HTTP 404 for %s", id, ErrNotFound, url)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch %s: HTTP %d for %s", id, resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if tmpl.Entry == "" {
		return data, nil
	}
	return ExtractZipEntry(data, tmpl.Entry)
}
