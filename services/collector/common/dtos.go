package common

// StatusPage holds the raw status page returned by the speaker together with the request timings
type StatusPage struct {
	Body          []byte
	TotalTimeMs   int64
	ElapsedTimeMs int64
}

// Field is a single named integer value of a metric point
type Field struct {
	Key   string
	Value int64
}

// CounterSet holds the interface counters in extraction order
type CounterSet []Field

// Get returns the value of the named counter
func (cs CounterSet) Get(key string) (int64, bool) {
	for _, f := range cs {
		if f.Key == key {
			return f.Value, true
		}
	}

	return 0, false
}
