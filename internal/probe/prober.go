package probe

import (
	"context"
	"net/http"
	"time"
)

// Outcome is the raw result of one probe request. A non-empty Err means
// the request never completed (connection refused, DNS failure, timeout,
// TLS error); StatusCode and LatencyMS are both 0 in that case. Any HTTP
// status that made it back over the wire, 2xx through 5xx, is a completed
// probe and carries no Err.
type Outcome struct {
	StatusCode int
	LatencyMS  int
	Err        string
}

// Completed reports whether an HTTP response was obtained at all.
func (o Outcome) Completed() bool { return o.Err == "" }

// Prober issues one outbound request against a monitor URL with the
// monitor's own timeout.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) Outcome
}

// HTTPProber is the stateless GET prober. The shared client carries no
// timeout of its own; each probe gets a deadline from the monitor config.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		Client: &http.Client{},
	}
}

func (p *HTTPProber) Probe(ctx context.Context, url string, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, url, nil)
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return Outcome{Err: err.Error()}
	}
	defer resp.Body.Close()

	return Outcome{
		StatusCode: resp.StatusCode,
		LatencyMS:  int(time.Since(start).Milliseconds()),
	}
}
