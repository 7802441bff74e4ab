package models

import (
	"encoding/json"
	"strconv"
)

// PatientCollection holds page elements exactly as received, in fetch order.
// Elements are not guaranteed to be objects.
type PatientCollection []json.RawMessage

// PatientRecord is one decoded element of a patient page. Every field may be
// absent, null or of an unexpected type.
type PatientRecord map[string]any

// DecodePatientRecord reports false for anything that is not a JSON object.
func DecodePatientRecord(raw json.RawMessage) (PatientRecord, bool) {
	var rec PatientRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec == nil {
		return nil, false
	}
	return rec, true
}

// ID returns patient_id as a string. Numeric ids are formatted; anything else
// yields "".
func (r PatientRecord) ID() string {
	switch v := r["patient_id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// PatientPage is one decoded response of the patients endpoint.
type PatientPage struct {
	Records []json.RawMessage
	HasNext bool
	// Malformed is set when the body had no usable data array.
	Malformed  bool
	Total      int
	TotalPages int
}

// AssessmentPayload is the body of the submit-assessment call.
type AssessmentPayload struct {
	HighRiskPatients  []string `json:"high_risk_patients"`
	FeverPatients     []string `json:"fever_patients"`
	DataQualityIssues []string `json:"data_quality_issues"`
}

// NewAssessmentPayload returns a payload whose lists encode as [] when empty.
func NewAssessmentPayload() AssessmentPayload {
	return AssessmentPayload{
		HighRiskPatients:  []string{},
		FeverPatients:     []string{},
		DataQualityIssues: []string{},
	}
}
