package factory

import (
	"context"
	"time"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/config"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/engine"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/extractor"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/poller"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/reporter"
)

type componentsHandler struct {
	poller    engine.Poller
	extractor engine.Extractor
	reporter  engine.Reporter
	engine    Engine
}

// NewComponentsHandler creates a new components handler
func NewComponentsHandler(cfg config.Config) (*componentsHandler, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	poll := poller.NewHTTPPoller(poller.StatusURL(cfg.Speaker.IP))

	extr, err := extractor.NewCounterExtractor(extractor.BridgeInterface, extractor.CounterFields)
	if err != nil {
		return nil, err
	}

	rep, err := reporter.NewInfluxReporter(reporter.ArgsInfluxReporter{
		URL:            cfg.Influx2.URL,
		Org:            cfg.Influx2.Org,
		Token:          cfg.Influx2.Token,
		Bucket:         cfg.Influx2.Bucket,
		Timeout:        time.Duration(cfg.Influx2.TimeoutInMilliseconds) * time.Millisecond,
		ConnectRetries: reporter.DefaultConnectRetries,
		ReadRetries:    reporter.DefaultReadRetries,
		MaxRedirects:   reporter.DefaultMaxRedirects,
	})
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewCollectorEngine(engine.ArgsCollectorEngine{
		Measurement: cfg.Influx2.Measurement,
		Host:        cfg.Speaker.Host,
		Region:      cfg.Speaker.Region,
		Poller:      poll,
		Extractor:   extr,
		Reporter:    rep,
	})
	if err != nil {
		return nil, err
	}

	return &componentsHandler{
		poller:    poll,
		extractor: extr,
		reporter:  rep,
		engine:    eng,
	}, nil
}

// GetPoller returns the poller component
func (ch *componentsHandler) GetPoller() engine.Poller {
	return ch.poller
}

// GetExtractor returns the extractor component
func (ch *componentsHandler) GetExtractor() engine.Extractor {
	return ch.extractor
}

// GetReporter returns the reporter component
func (ch *componentsHandler) GetReporter() engine.Reporter {
	return ch.reporter
}

// GetEngine returns the engine component
func (ch *componentsHandler) GetEngine() Engine {
	return ch.engine
}

// Run executes the collection pipeline once
func (ch *componentsHandler) Run(ctx context.Context) error {
	return ch.engine.Process(ctx)
}
