package testsCommon

import (
	"context"

	"github.com/iulianpascalau/speaker-monitoring/services/collector/common"
)

// PollerStub -
type PollerStub struct {
	PollHandler func(ctx context.Context) (*common.StatusPage, error)
}

// Poll -
func (stub *PollerStub) Poll(ctx context.Context) (*common.StatusPage, error) {
	if stub.PollHandler != nil {
		return stub.PollHandler(ctx)
	}

	return &common.StatusPage{}, nil
}

// IsInterfaceNil -
func (stub *PollerStub) IsInterfaceNil() bool {
	return stub == nil
}
