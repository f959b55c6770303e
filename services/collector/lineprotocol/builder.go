// Package lineprotocol builds single InfluxDB line protocol records. Field values are integers written without
// the `i` type suffix and no timestamp is emitted, the server assigns the write time.
package lineprotocol

import (
	"errors"
	"strconv"
	"strings"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/common"
)

// ErrEmptyMeasurement signals that the point has no measurement name
var ErrEmptyMeasurement = errors.New("empty measurement name")

// ErrNoFields signals that the point has no field
var ErrNoFields = errors.New("point has no fields")

var measurementEscaper = strings.NewReplacer(",", `\,`, " ", `\ `)
var keyEscaper = strings.NewReplacer(",", `\,`, "=", `\=`, " ", `\ `)

type tag struct {
	key   string
	value string
}

// Builder accumulates the parts of a single point, keeping the insertion order of tags and fields
type Builder struct {
	measurement string
	tags        []tag
	fields      []common.Field
}

// NewBuilder creates a builder for the provided measurement
func NewBuilder(measurement string) *Builder {
	return &Builder{
		measurement: measurement,
	}
}

// AddTag appends a tag. Tags with an empty value are dropped since the line protocol can not carry them.
func (b *Builder) AddTag(key string, value string) *Builder {
	if len(value) == 0 {
		return b
	}

	b.tags = append(b.tags, tag{key: key, value: value})
	return b
}

// AddField appends an integer field
func (b *Builder) AddField(key string, value int64) *Builder {
	b.fields = append(b.fields, common.Field{Key: key, Value: value})
	return b
}

// AddFields appends all the provided fields, in order
func (b *Builder) AddFields(fields []common.Field) *Builder {
	b.fields = append(b.fields, fields...)
	return b
}

// Build renders `<measurement>,<k>=<v>,... <f1>=<v1>,...,<fn>=<vn>` without trailing newline
func (b *Builder) Build() (string, error) {
	if len(b.measurement) == 0 {
		return "", ErrEmptyMeasurement
	}
	if len(b.fields) == 0 {
		return "", ErrNoFields
	}

	sb := strings.Builder{}
	sb.WriteString(measurementEscaper.Replace(b.measurement))
	for _, t := range b.tags {
		sb.WriteByte(',')
		sb.WriteString(keyEscaper.Replace(t.key))
		sb.WriteByte('=')
		sb.WriteString(keyEscaper.Replace(t.value))
	}

	sb.WriteByte(' ')
	for i, f := range b.fields {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(keyEscaper.Replace(f.Key))
		sb.WriteByte('=')
		sb.WriteString(strconv.FormatInt(f.Value, 10))
	}

	return sb.String(), nil
}
