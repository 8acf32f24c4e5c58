package sources

import (
	"context"

	"github.com/ibrhmmrana/hunter2.0-sub000/internal/models"
)

// Result is the structured output of an upstream analyzer. The payload
// shape varies per provider, so both sections stay loosely typed; the
// monitoring adapter owns field extraction.
type Result struct {
	Profile map[string]interface{} `json:"profile"`
	RawData map[string]interface{} `json:"rawData"`
}

// Analyzer defines the contract for all upstream content analyzers
type Analyzer interface {
	Network() models.Network
	Analyze(ctx context.Context, handle string) (*Result, error)
	IsEnabled() bool
}
