package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/common"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/ifconfig"
	logger "github.com/multiversx/mx-chain-logger-go"
	"golang.org/x/net/html"
)

// BridgeInterface is the speaker's internal bridge, its counters approximate the whole device traffic
const BridgeInterface = "br0"

// CounterFields lists, in output order, the counters extracted from the interface
var CounterFields = []string{
	"rx_packets",
	"rx_errors",
	"rx_dropped",
	"rx_bytes",
	"tx_packets",
	"tx_errors",
	"tx_dropped",
	"tx_bytes",
	"tx_collisions",
}

var log = logger.GetOrCreate("extractor")

type counterExtractor struct {
	interfaceName string
	fields        []string
}

// NewCounterExtractor creates an extractor for the provided interface and counter names
func NewCounterExtractor(interfaceName string, fields []string) (*counterExtractor, error) {
	if len(interfaceName) == 0 {
		return nil, errors.New("empty interface name")
	}
	if len(fields) == 0 {
		return nil, errors.New("no counter fields to extract")
	}

	return &counterExtractor{
		interfaceName: interfaceName,
		fields:        append([]string(nil), fields...),
	}, nil
}

// Extract strips the markup from the status page and selects the configured counters of the configured interface
func (ce *counterExtractor) Extract(page []byte) (common.CounterSet, error) {
	text, err := TextContent(page)
	if err != nil {
		return nil, err
	}

	interfaces, err := ifconfig.Parse(text)
	if err != nil {
		return nil, err
	}

	iface, found := ifconfig.Find(interfaces, ce.interfaceName)
	if !found {
		return nil, fmt.Errorf("%w: %s (report has %d interfaces)", ErrInterfaceNotFound, ce.interfaceName, len(interfaces))
	}

	counters := make(common.CounterSet, 0, len(ce.fields))
	for _, field := range ce.fields {
		raw, ok := iface.Attribute(field)
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrAttributeMissing, field, ce.interfaceName)
		}

		value, errParse := strconv.ParseInt(raw, 10, 64)
		if errParse != nil {
			return nil, fmt.Errorf("%w: %s=%q on %s", ErrInvalidAttributeValue, field, raw, ce.interfaceName)
		}

		counters = append(counters, common.Field{Key: field, Value: value})
	}

	log.Debug("counters extracted", "interface", ce.interfaceName, "counters", counters)

	return counters, nil
}

// TextContent returns the concatenated text nodes of the provided HTML/XML document, CDATA sections included
func TextContent(page []byte) (string, error) {
	builder := strings.Builder{}
	tokenizer := html.NewTokenizer(bytes.NewReader(page))
	tokenizer.AllowCDATA(true)
	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			err := tokenizer.Err()
			if errors.Is(err, io.EOF) {
				return builder.String(), nil
			}
			return "", fmt.Errorf("failed to tokenize status page: %w", err)
		case html.TextToken:
			builder.Write(tokenizer.Text())
		}
	}
}

// IsInterfaceNil returns true if the value under the interface is nil
func (ce *counterExtractor) IsInterfaceNil() bool {
	return ce == nil
}
