package testsCommon

import "github.com/iulianpascalau/speaker-monitoring/services/collector/common"

// ExtractorStub -
type ExtractorStub struct {
	ExtractHandler func(page []byte) (common.CounterSet, error)
}

// Extract -
func (stub *ExtractorStub) Extract(page []byte) (common.CounterSet, error) {
	if stub.ExtractHandler != nil {
		return stub.ExtractHandler(page)
	}

	return make(common.CounterSet, 0), nil
}

// IsInterfaceNil -
func (stub *ExtractorStub) IsInterfaceNil() bool {
	return stub == nil
}
