package pipeline

import (
	"time"

	"github.com/documind/documind/constants"
	"github.com/documind/documind/internal/classify"
	"github.com/documind/documind/internal/fields"
	"github.com/documind/documind/internal/validate"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// StageTiming is one stage's elapsed wall time. Stages keep execution order.
type StageTiming struct {
	Stage     string  `json:"stage"`
	ElapsedMS float64 `json:"elapsed_ms"`
}

type Performance struct {
	TotalMS float64       `json:"total_ms"`
	Stages  []StageTiming `json:"stages"`
}

// DocumentResult is the full report for one processed document. It is
// assembled stage by stage and immutable once returned; later corrections
// happen on stored copies, never on this value.
type DocumentResult struct {
	DocumentType   constants.DocumentType `json:"document_type"`
	Classification classify.Result        `json:"classification"`
	Fields         *fields.Set            `json:"fields"`
	Validation     validate.Report        `json:"validation"`
	Performance    Performance            `json:"performance"`
	Status         string                 `json:"status"`
	Error          string                 `json:"error,omitempty"`
}

func failedResult(errMsg string, cls classify.Result, start time.Time, stages []StageTiming) *DocumentResult {
	return &DocumentResult{
		DocumentType:   cls.DocumentType,
		Classification: cls,
		Fields:         fields.NewSet(),
		Validation: validate.Report{
			DocumentValid:    false,
			FieldValidations: map[string]bool{},
			LogicErrors:      []string{},
		},
		Performance: Performance{TotalMS: msSince(start), Stages: stages},
		Status:      StatusFailed,
		Error:       errMsg,
	}
}

func msSince(t time.Time) float64 {
	return time.Since(t).Seconds() * 1000
}
