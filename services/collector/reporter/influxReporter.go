package reporter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxhttp "github.com/influxdata/influxdb-client-go/v2/api/http"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/tidwall/gjson"
)

const (
	// DefaultConnectRetries is the number of re-sends allowed after connection failures
	DefaultConnectRetries = 3
	// DefaultReadRetries is the number of re-sends allowed after read failures
	DefaultReadRetries = 2
	// DefaultMaxRedirects is the number of redirects followed before giving up
	DefaultMaxRedirects = 3
)

var log = logger.GetOrCreate("reporter")

// ArgsInfluxReporter defines the arguments needed to create a new InfluxDB 2 reporter
type ArgsInfluxReporter struct {
	URL            string
	Org            string
	Token          string
	Bucket         string
	Timeout        time.Duration
	ConnectRetries int
	ReadRetries    int
	MaxRedirects   int
}

type influxReporter struct {
	serverURL string
	org       string
	bucket    string
	token     string
	client    *http.Client
	transport *http.Transport
}

// NewInfluxReporter creates a new reporter that writes line protocol records in the configured bucket
func NewInfluxReporter(args ArgsInfluxReporter) (*influxReporter, error) {
	err := checkArgs(args)
	if err != nil {
		return nil, err
	}

	// the timeout applies to each attempt so that a stalled answer consumes the read budget
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = args.Timeout
	maxRedirects := args.MaxRedirects

	return &influxReporter{
		serverURL: args.URL,
		org:       args.Org,
		bucket:    args.Bucket,
		token:     args.Token,
		transport: transport,
		client: &http.Client{
			Transport: newRetryTransport(transport, args.ConnectRetries, args.ReadRetries),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}, nil
}

func checkArgs(args ArgsInfluxReporter) error {
	if len(args.Bucket) == 0 {
		return errors.New("empty bucket")
	}
	if len(args.Org) == 0 {
		return errors.New("empty organization")
	}
	if args.ConnectRetries < 0 || args.ReadRetries < 0 || args.MaxRedirects < 0 {
		return errors.New("negative retry budget")
	}

	u, err := url.Parse(args.URL)
	if err != nil {
		return fmt.Errorf("invalid InfluxDB URL: %w", err)
	}
	if len(u.Scheme) == 0 || len(u.Host) == 0 {
		return fmt.Errorf("invalid InfluxDB URL: %q", args.URL)
	}

	return nil
}

// Report makes one blocking write of the line in the configured bucket. The client and the connections opened
// for the write are released before returning, whatever the outcome.
func (r *influxReporter) Report(ctx context.Context, line string) error {
	defer r.transport.CloseIdleConnections()

	options := influxdb2.DefaultOptions().
		SetHTTPClient(r.client).
		SetPrecision(time.Nanosecond)
	client := influxdb2.NewClientWithOptions(r.serverURL, r.token, options)
	defer client.Close()

	err := client.WriteAPIBlocking(r.org, r.bucket).WriteRecord(ctx, line)
	if err != nil {
		return wrapWriteError(err)
	}

	log.Debug("successfully wrote metric line", "url", r.serverURL, "bucket", r.bucket, "line", line)

	return nil
}

func wrapWriteError(err error) error {
	var httpErr *influxhttp.Error
	if errors.As(err, &httpErr) && httpErr.StatusCode > 0 {
		return fmt.Errorf("server rejected write with status code %d: %s", httpErr.StatusCode, errorMessage(httpErr))
	}

	return fmt.Errorf("network error sending write request: %w", err)
}

// errorMessage prefers the message of a JSON body. The client decodes only application/json bodies, proxies
// and the 1.x compatibility endpoint may send JSON with another content type.
func errorMessage(httpErr *influxhttp.Error) string {
	message := strings.TrimSpace(httpErr.Message)
	if gjson.Valid(message) {
		for _, path := range []string{"message", "error"} {
			result := gjson.Get(message, path)
			if result.Exists() && len(result.String()) > 0 {
				return result.String()
			}
		}
	}
	if len(message) > 0 {
		return message
	}
	if httpErr.Err != nil {
		return httpErr.Err.Error()
	}

	return httpErr.Code
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *influxReporter) IsInterfaceNil() bool {
	return r == nil
}
