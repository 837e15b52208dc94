package probe

import (
	"context"
	"fmt"
	"net/http"

	"github.com/entrygate/entrygate/internal/errs"
)

// HTTP probes by issuing a GET against the target and treating any response
// below 500 as ready. A 4xx still proves the service is up and serving; 5xx
// usually means it is still warming up behind its listener.
type HTTP struct {
	// Scheme defaults to http.
	Scheme string
	// Path defaults to /.
	Path string
	// Client defaults to http.DefaultClient. The per-attempt deadline rides
	// on the request context either way.
	Client *http.Client
}

// Check implements Probe.
func (h HTTP) Check(ctx context.Context, target Target) (mErr error) {
	scheme := h.Scheme
	if scheme == "" {
		scheme = "http"
	}
	path := h.Path
	if path == "" {
		path = "/"
	}
	url := scheme + "://" + target.String() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", url, err)
	}
	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer errs.Capture(&mErr, resp.Body.Close, "close response body")
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%s responded %s", url, resp.Status)
	}
	return nil
}
