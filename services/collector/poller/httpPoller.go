package poller

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptrace"
	"time"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	statusPort = "1400"
	statusPath = "/status/ifconfig"
)

var log = logger.GetOrCreate("poller")

type httpPoller struct {
	client *http.Client
	url    string
}

// StatusURL returns the address of the ifconfig status page of the provided speaker
func StatusURL(speakerAddress string) string {
	return "http://" + net.JoinHostPort(speakerAddress, statusPort) + statusPath
}

// NewHTTPPoller creates a new HTTP-based poller for the status page found at the provided URL.
// The client has no timeout: a hanging speaker will block the run until the context is done.
func NewHTTPPoller(url string) *httpPoller {
	return &httpPoller{
		client: &http.Client{},
		url:    url,
	}
}

// Poll issues a single GET on the status page and measures the total and the time-to-first-byte durations
func (p *httpPoller) Poll(ctx context.Context) (*common.StatusPage, error) {
	var firstByte time.Time
	trace := &httptrace.ClientTrace{
		GotFirstResponseByte: func() {
			firstByte = time.Now()
		},
	}

	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create status request: %w", err)
	}

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to query status page %s: %w", p.url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if firstByte.IsZero() {
		firstByte = time.Now()
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errStatusNotOK(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read status page: %w", err)
	}
	end := time.Now()

	page := &common.StatusPage{
		Body:          body,
		TotalTimeMs:   end.Sub(start).Round(time.Millisecond).Milliseconds(),
		ElapsedTimeMs: firstByte.Sub(start).Round(time.Millisecond).Milliseconds(),
	}

	log.Debug("status page fetched", "url", p.url, "size", len(body),
		"total_time", page.TotalTimeMs, "elapsed_time", page.ElapsedTimeMs)

	return page, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (p *httpPoller) IsInterfaceNil() bool {
	return p == nil
}
