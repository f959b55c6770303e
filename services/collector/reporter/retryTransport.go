package reporter

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

const (
	dialOperation = "dial"
	readOperation = "read"
)

// retryTransport re-sends a request after transport failures. Connection failures (the request never reached
// the server) and read failures (the connection broke or stalled before a response was received) have separate
// budgets. Any other failure, TLS or protocol errors included, is returned at once.
type retryTransport struct {
	base           http.RoundTripper
	connectRetries int
	readRetries    int
}

func newRetryTransport(base http.RoundTripper, connectRetries int, readRetries int) *retryTransport {
	return &retryTransport{
		base:           base,
		connectRetries: connectRetries,
		readRetries:    readRetries,
	}
}

// RoundTrip implements http.RoundTripper
func (rt *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	connectLeft := rt.connectRetries
	readLeft := rt.readRetries

	attemptReq := req
	for attempt := 1; ; attempt++ {
		resp, err := rt.base.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		if req.Context().Err() != nil {
			return nil, err
		}

		connectFailure := isConnectError(err)
		readFailure := !connectFailure && isReadError(err)
		switch {
		case connectFailure && connectLeft > 0:
			connectLeft--
		case readFailure && readLeft > 0:
			readLeft--
		default:
			return nil, err
		}

		log.Debug("retrying write request", "attempt", attempt, "connect failure", connectFailure, "error", err)

		attemptReq, err = rewind(req)
		if err != nil {
			return nil, err
		}
	}
}

func rewind(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body can not be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("failed to replay request body: %w", err)
	}
	clone.Body = body

	return clone, nil
}

func isConnectError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == dialOperation
	}

	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isReadError(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == readOperation
	}

	// stalled answers, as reported by Transport.ResponseHeaderTimeout
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
