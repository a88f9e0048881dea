// Package probe performs a single HTTP check against a monitored endpoint
// and classifies the outcome. A probe never fails: transport errors and
// timeouts are the signal being monitored and come back as DOWN results.
package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/heartbeat-hq/heartbeat/internal/domain/endpoint"
	"github.com/heartbeat-hq/heartbeat/internal/domain/ping"
)

const (
	// Timeout is the hard per-probe budget. Exceeding it is a DOWN
	// observation, not a retryable error.
	Timeout = 10 * time.Second

	// degradedAfter is the response-time threshold above which an
	// otherwise healthy response is classified DEGRADED.
	degradedAfter = 5 * time.Second
)

// Result is the classified outcome of one check attempt. StatusCode is nil
// when no HTTP response was received.
type Result struct {
	Status       ping.Status
	StatusCode   *int
	ResponseTime time.Duration
	Message      *string
}

type Prober struct {
	client    *http.Client
	userAgent string
}

func New(cfg Config) *Prober {
	return &Prober{
		client:    newHTTPClient(cfg),
		userAgent: cfg.UserAgent,
	}
}

// Do issues one request with the endpoint's method and classifies the
// response. Redirects are followed; the elapsed time covers the full chain.
func (p *Prober) Do(ctx context.Context, rawURL string, method endpoint.Method) Result {
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	url := normalizeURL(rawURL)
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, string(method), url, nil)
	if err != nil {
		return downResult(err.Error(), time.Since(start))
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return downResult(errorMessage(err), elapsed)
	}
	defer resp.Body.Close()

	code := resp.StatusCode
	status, msg := classify(code, elapsed)
	return Result{
		Status:       status,
		StatusCode:   &code,
		ResponseTime: elapsed,
		Message:      msg,
	}
}

// classify applies the status policy: non-[200,400) is DOWN, a slow but
// successful response is DEGRADED, everything else is UP.
func classify(code int, elapsed time.Duration) (ping.Status, *string) {
	if code < 200 || code >= 400 {
		msg := fmt.Sprintf("HTTP %d %s", code, http.StatusText(code))
		return ping.StatusDown, &msg
	}
	if elapsed >= degradedAfter {
		return ping.StatusDegraded, nil
	}
	return ping.StatusUp, nil
}

func downResult(msg string, elapsed time.Duration) Result {
	return Result{
		Status:       ping.StatusDown,
		StatusCode:   nil,
		ResponseTime: elapsed,
		Message:      &msg,
	}
}

func errorMessage(err error) string {
	var nerr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
		return fmt.Sprintf("request timed out (%s)", Timeout)
	}
	return err.Error()
}

func normalizeURL(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return t
	}
	if strings.HasPrefix(t, "http://") || strings.HasPrefix(t, "https://") {
		return t
	}
	return "http://" + t
}
