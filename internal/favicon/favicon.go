// Package favicon finds an icon for a website. Every lookup is best
// effort: a missing icon is reported as not found, never as a failure.
package favicon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andrebq/toolshelf/internal/logutil"
)

type (
	// Fetcher looks up icons first on an icon service and then on the
	// site's own /favicon.ico.
	Fetcher struct {
		Client       *http.Client
		ServiceBase  string
		Timeout      time.Duration
		ProbeTimeout time.Duration
	}

	BadStatus struct {
		URL    string
		Status int
	}
)

const (
	DefaultServiceBase = "https://www.google.com"

	userAgent   = "Mozilla/5.0 (compatible; toolshelf favicon fetcher)"
	maxIconSize = 1 << 20
)

var (
	ErrNotFound = errors.New("favicon: not found")
)

func (b BadStatus) Error() string {
	return fmt.Sprintf("%v answered with status %v", b.URL, b.Status)
}

func New() *Fetcher {
	return &Fetcher{
		Client:       http.DefaultClient,
		ServiceBase:  DefaultServiceBase,
		Timeout:      5 * time.Second,
		ProbeTimeout: 3 * time.Second,
	}
}

// Fetch returns the icon of the site at rawURL as a data URL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	log := logutil.GetOrDefault(ctx)
	site, err := normalize(rawURL)
	if err != nil {
		return "", ErrNotFound
	}
	service := fmt.Sprintf("%v/s2/favicons?domain=%v&sz=128", strings.TrimRight(f.ServiceBase, "/"), url.QueryEscape(site.Hostname()))
	icon, err := f.get(ctx, service, "")
	if err == nil {
		return icon, nil
	}
	log.Debug().Err(err).Str("domain", site.Hostname()).Msg("Icon service failed, trying favicon.ico")
	direct := fmt.Sprintf("%v://%v/favicon.ico", site.Scheme, site.Host)
	icon, err = f.get(ctx, direct, "image/x-icon")
	if err != nil {
		log.Debug().Err(err).Str("domain", site.Hostname()).Msg("Unable to fetch favicon.ico")
		return "", ErrNotFound
	}
	return icon, nil
}

// Reachable reports whether rawURL answers a HEAD request in time.
func (f *Fetcher) Reachable(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, f.ProbeTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)
	res, err := f.client().Do(req)
	if err != nil {
		return false
	}
	res.Body.Close()
	return res.StatusCode < 400
}

func (f *Fetcher) get(ctx context.Context, target string, defaultType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)
	res, err := f.client().Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", BadStatus{URL: target, Status: res.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, maxIconSize))
	if err != nil {
		return "", fmt.Errorf("unable to read icon from %v, cause %w", target, err)
	}
	ct := res.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultType
	}
	if ct == "" {
		ct = http.DetectContentType(body)
	}
	return fmt.Sprintf("data:%v;base64,%v", ct, base64.StdEncoding.EncodeToString(body)), nil
}

func (f *Fetcher) client() *http.Client {
	if f.Client == nil {
		return http.DefaultClient
	}
	return f.Client
}

func normalize(rawURL string) (*url.URL, error) {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("%v has no host", rawURL)
	}
	return u, nil
}
