package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"docsum-backend/internal/shared/storage/object"
)

const maxRedirects = 10

// Fetcher resolves a document URL to text. URLs under LocalPrefix are read
// straight from Store instead of looping back over HTTP. When AllowedHosts is
// set, remote URLs and their redirects must point at one of those hosts.
type Fetcher struct {
	Client       *http.Client
	Store        object.ObjectStore
	LocalPrefix  string
	AllowedHosts []string
}

// Text returns the plain text of the document at rawURL.
func (f Fetcher) Text(ctx context.Context, rawURL string) (string, error) {
	if key, ok := f.localKey(rawURL); ok {
		return FromStore(ctx, f.Store, key)
	}
	return fromURL(ctx, f.client(), rawURL, f.AllowedHosts)
}

func (f Fetcher) client() *http.Client {
	base := f.Client
	if base == nil {
		base = &http.Client{Timeout: FetchTimeout}
	}
	if len(f.AllowedHosts) == 0 {
		return base
	}
	c := *base
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("too many redirects")
		}
		if _, err := parseRemote(req.URL.String()); err != nil {
			return err
		}
		if !hostAllowed(req.URL.Hostname(), f.AllowedHosts) {
			return fmt.Errorf("redirect to %s: %w", req.URL.Hostname(), ErrURLRejected)
		}
		return nil
	}
	return &c
}

func (f Fetcher) localKey(rawURL string) (string, bool) {
	if f.Store == nil || f.LocalPrefix == "" || !strings.HasPrefix(rawURL, f.LocalPrefix) {
		return "", false
	}
	key, err := url.PathUnescape(strings.TrimPrefix(rawURL, f.LocalPrefix))
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}
