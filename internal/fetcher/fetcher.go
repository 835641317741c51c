// Package fetcher downloads catalog payloads and decodes JSON, CSV and XLSX rows.
package fetcher

import (
	"context"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Fetcher downloads remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// SchemeFetcher routes downloads to a Fetcher by URL scheme.
type SchemeFetcher map[string]Fetcher

// NewSchemeFetcher routes http and https to h and ftp to f. Nil fetchers are
// left out.
func NewSchemeFetcher(h *HTTPFetcher, f *FTPFetcher) SchemeFetcher {
	s := SchemeFetcher{}
	if h != nil {
		s["http"] = h
		s["https"] = h
	}
	if f != nil {
		s["ftp"] = f
	}
	return s
}

// Download implements Fetcher.
func (s SchemeFetcher) Download(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	scheme := ""
	if u, err := url.Parse(rawURL); err == nil {
		scheme = strings.ToLower(u.Scheme)
	}
	f, ok := s[scheme]
	if !ok {
		return nil, eris.Errorf("fetcher: unsupported scheme %q", scheme)
	}
	return f.Download(ctx, rawURL)
}

// Open returns a reader for location, downloading it with f when it is a
// URL and opening it from disk otherwise.
func Open(ctx context.Context, f Fetcher, location string) (io.ReadCloser, error) {
	if IsURL(location) {
		if f == nil {
			return nil, eris.Errorf("fetcher: no downloader for %s", location)
		}
		return f.Download(ctx, location)
	}
	file, err := os.Open(location)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: open %s", location)
	}
	return file, nil
}

// IsURL reports whether location is an http, https or ftp URL.
func IsURL(location string) bool {
	l := strings.ToLower(location)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "ftp://")
}
