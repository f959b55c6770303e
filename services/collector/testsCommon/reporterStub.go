package testsCommon

import "context"

// ReporterStub -
type ReporterStub struct {
	ReportHandler func(ctx context.Context, line string) error
}

// Report -
func (stub *ReporterStub) Report(ctx context.Context, line string) error {
	if stub.ReportHandler != nil {
		return stub.ReportHandler(ctx, line)
	}

	return nil
}

// IsInterfaceNil -
func (stub *ReporterStub) IsInterfaceNil() bool {
	return stub == nil
}
