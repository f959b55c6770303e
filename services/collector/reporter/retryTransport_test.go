package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperStub struct {
	bodies       []string
	errorsToSend []error
}

func (stub *roundTripperStub) RoundTrip(req *http.Request) (*http.Response, error) {
	data, _ := io.ReadAll(req.Body)
	_ = req.Body.Close()
	stub.bodies = append(stub.bodies, string(data))

	if len(stub.errorsToSend) > 0 {
		err := stub.errorsToSend[0]
		stub.errorsToSend = stub.errorsToSend[1:]
		return nil, err
	}

	return &http.Response{
		StatusCode: http.StatusNoContent,
		Body:       http.NoBody,
		Request:    req,
	}, nil
}

func createPostRequest(t *testing.T, ctx context.Context) *http.Request {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://127.0.0.1:8086/api/v2/write", strings.NewReader("net x=1"))
	require.Nil(t, err)

	return req
}

func dialError() error {
	return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
}

func readError() error {
	return &net.OpError{Op: "read", Net: "tcp", Err: errors.New("connection reset by peer")}
}

func TestRetryTransport_RoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("success should not retry", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		require.Nil(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, []string{"net x=1"}, stub.bodies)
	})
	t.Run("connection failures should be retried with the body replayed", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{dialError(), dialError(), dialError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		require.Nil(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		assert.Equal(t, []string{"net x=1", "net x=1", "net x=1", "net x=1"}, stub.bodies)
	})
	t.Run("connection budget exhausted should error", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{dialError(), dialError(), dialError(), dialError(), dialError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "connection refused")
		assert.Len(t, stub.bodies, DefaultConnectRetries+1)
	})
	t.Run("read budget exhausted should error", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{readError(), io.ErrUnexpectedEOF, readError(), readError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "connection reset by peer")
		assert.Len(t, stub.bodies, DefaultReadRetries+1)
	})
	t.Run("budgets are independent", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{dialError(), readError(), dialError(), readError(), dialError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		require.Nil(t, err)
		assert.NotNil(t, resp)
		assert.Len(t, stub.bodies, 6)
	})
	t.Run("cancelled context should not retry", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stub := &roundTripperStub{
			errorsToSend: []error{dialError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, ctx))
		assert.Nil(t, resp)
		assert.Error(t, err)
		assert.Len(t, stub.bodies, 1)
	})
	t.Run("timeouts should use the read budget", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{timeoutError{}, timeoutError{}},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		require.Nil(t, err)
		assert.NotNil(t, resp)
		assert.Len(t, stub.bodies, 3)
	})
	t.Run("other failures should not be retried", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{errors.New("tls: handshake failure"), readError()},
		}
		rt := newRetryTransport(stub, DefaultConnectRetries, DefaultReadRetries)

		resp, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		assert.Nil(t, resp)
		assert.ErrorContains(t, err, "tls: handshake failure")
		assert.Len(t, stub.bodies, 1)
	})
	t.Run("zero budgets should not retry", func(t *testing.T) {
		t.Parallel()

		stub := &roundTripperStub{
			errorsToSend: []error{dialError()},
		}
		rt := newRetryTransport(stub, 0, 0)

		_, err := rt.RoundTrip(createPostRequest(t, context.Background()))
		assert.Error(t, err)
		assert.Len(t, stub.bodies, 1)
	})
}

type timeoutError struct{}

func (timeoutError) Error() string { return "net/http: timeout awaiting response headers" }
func (timeoutError) Timeout() bool { return true }
func (timeoutError) Temporary() bool { return true }

func TestIsReadError(t *testing.T) {
	t.Parallel()

	assert.True(t, isReadError(readError()))
	assert.True(t, isReadError(io.EOF))
	assert.True(t, isReadError(fmt.Errorf("transport connection broken: %w", io.ErrUnexpectedEOF)))
	assert.True(t, isReadError(timeoutError{}))
	assert.False(t, isReadError(&net.OpError{Op: "write", Net: "tcp", Err: errors.New("broken pipe")}))
	assert.False(t, isReadError(errors.New("malformed HTTP response")))
}

func TestIsConnectError(t *testing.T) {
	t.Parallel()

	assert.True(t, isConnectError(dialError()))
	assert.True(t, isConnectError(&net.DNSError{Err: "no such host", Name: "influx.lan"}))
	assert.False(t, isConnectError(readError()))
	assert.False(t, isConnectError(io.EOF))
}
