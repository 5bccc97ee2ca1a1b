// Package processor abstracts the external funding processor. The engine
// only cares about accept/reject; everything else is provider detail.
package processor

import "context"

type Result struct {
	Success   bool
	Reference string
	Message   string
}

type Processor interface {
	Process(ctx context.Context, provider, reference string) Result
}

// RejectProvider is the well-known provider name that always rejects, used
// to exercise the failure path end to end.
const RejectProvider = "fail"

// Simulated accepts every provider except RejectProvider.
type Simulated struct{}

func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Process(_ context.Context, provider, reference string) Result {
	if provider == RejectProvider {
		return Result{Success: false, Message: "provider rejected the funding"}
	}
	return Result{Success: true, Reference: reference, Message: "approved"}
}
