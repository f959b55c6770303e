package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/lineprotocol"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
)

const (
	hostTag          = "host"
	regionTag        = "region"
	totalTimeField   = "total_time"
	elapsedTimeField = "elapsed_time"
)

var log = logger.GetOrCreate("engine")

// ArgsCollectorEngine defines the arguments needed to create a new collector engine
type ArgsCollectorEngine struct {
	Measurement string
	Host        string
	Region      string
	Poller      Poller
	Extractor   Extractor
	Reporter    Reporter
}

// collectorEngine runs the fetch, extract, serialize and write steps once
type collectorEngine struct {
	measurement string
	host        string
	region      string
	poller      Poller
	extractor   Extractor
	reporter    Reporter
}

// NewCollectorEngine creates a new engine instance
func NewCollectorEngine(args ArgsCollectorEngine) (*collectorEngine, error) {
	if check.IfNil(args.Poller) {
		return nil, errors.New("nil poller")
	}
	if check.IfNil(args.Extractor) {
		return nil, errors.New("nil extractor")
	}
	if check.IfNil(args.Reporter) {
		return nil, errors.New("nil reporter")
	}
	if len(args.Measurement) == 0 {
		return nil, lineprotocol.ErrEmptyMeasurement
	}

	return &collectorEngine{
		measurement: args.Measurement,
		host:        args.Host,
		region:      args.Region,
		poller:      args.Poller,
		extractor:   args.Extractor,
		reporter:    args.Reporter,
	}, nil
}

// Process fetches the status page, builds the metric line and writes it. Any failure stops the run before the
// write is attempted.
func (e *collectorEngine) Process(ctx context.Context) error {
	line, err := e.BuildLine(ctx)
	if err != nil {
		return err
	}

	err = e.reporter.Report(ctx, line)
	if err != nil {
		return fmt.Errorf("failed to write metric: %w", err)
	}

	log.Info("metric written", "measurement", e.measurement, "host", e.host)

	return nil
}

// BuildLine fetches the status page and returns the line protocol record without writing it
func (e *collectorEngine) BuildLine(ctx context.Context) (string, error) {
	page, err := e.poller.Poll(ctx)
	if err != nil {
		return "", err
	}

	counters, err := e.extractor.Extract(page.Body)
	if err != nil {
		return "", fmt.Errorf("failed to extract counters: %w", err)
	}

	line, err := lineprotocol.NewBuilder(e.measurement).
		AddTag(hostTag, e.host).
		AddTag(regionTag, e.region).
		AddFields(counters).
		AddField(totalTimeField, page.TotalTimeMs).
		AddField(elapsedTimeField, page.ElapsedTimeMs).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build metric line: %w", err)
	}

	log.Debug("metric line built", "line", line)

	return line, nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (e *collectorEngine) IsInterfaceNil() bool {
	return e == nil
}
