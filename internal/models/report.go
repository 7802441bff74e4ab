package models

import (
	"encoding/json"
	"time"
)

// RunReport records the outcome of one assessment run.
type RunReport struct {
	RunID          string            `json:"run_id"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     time.Time         `json:"finished_at"`
	PagesFetched   int               `json:"pages_fetched"`
	Retries        int               `json:"retries"`
	RecordsFetched int               `json:"records_fetched"`
	RecordsSkipped int               `json:"records_skipped"`
	FetchError     string            `json:"fetch_error,omitempty"`
	Payload        AssessmentPayload `json:"payload"`
	Submitted      bool              `json:"submitted"`
	SubmitStatus   int               `json:"submit_status,omitempty"`
	SubmitResponse json.RawMessage   `json:"submit_response,omitempty"`
	SubmitError    string            `json:"submit_error,omitempty"`
}

// RunSummary for the report command
type RunSummary struct {
	Runs         int `json:"runs"`
	Submitted    int `json:"submitted"`
	Failed       int `json:"failed"`
	PartialFetch int `json:"partial_fetch"`
}
