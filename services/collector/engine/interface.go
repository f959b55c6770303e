package engine

import (
	"context"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/common"
)

// Poller defines the interface for fetching the speaker's status page
type Poller interface {
	// Poll issues exactly one request and returns the page together with the request timings.
	// A non-2xx answer is returned as an error and no page is produced.
	Poll(ctx context.Context) (*common.StatusPage, error)

	IsInterfaceNil() bool
}

// Extractor defines the interface for selecting the interface counters out of a status page
type Extractor interface {
	Extract(page []byte) (common.CounterSet, error)

	IsInterfaceNil() bool
}

// Reporter defines the interface for writing a line protocol record to the time-series database
type Reporter interface {
	// Report makes a single write call. Only transport-level retries are applied.
	Report(ctx context.Context, line string) error

	IsInterfaceNil() bool
}
