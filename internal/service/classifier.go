package service

import (
	"github.com/rs/zerolog"

	"gotriage/internal/models"
	"gotriage/internal/vitals"
)

// Classifier sorts fetched records into the three cohorts in a single pass.
type Classifier struct {
	logger zerolog.Logger
}

type ClassifyResult struct {
	Payload    models.AssessmentPayload
	Classified int
	Skipped    int
}

func NewClassifier(logger zerolog.Logger) *Classifier {
	return &Classifier{logger: logger}
}

// Classify keeps the collection order inside each cohort. Ids are neither
// deduplicated across pages nor across cohorts. Elements that are not JSON
// objects are skipped.
func (c *Classifier) Classify(records models.PatientCollection) ClassifyResult {
	result := ClassifyResult{Payload: models.NewAssessmentPayload()}

	for idx, raw := range records {
		rec, ok := models.DecodePatientRecord(raw)
		if !ok {
			c.logger.Warn().Int("index", idx).Str("raw", truncateRaw(raw)).Msg("skipping invalid patient entry")
			result.Skipped++
			continue
		}

		id := rec.ID()
		if id == "" {
			c.logger.Warn().Int("index", idx).Msg("patient record has no usable patient_id")
		}

		a := vitals.Assess(rec)
		if a.DataQualityIssue {
			result.Payload.DataQualityIssues = append(result.Payload.DataQualityIssues, id)
		}
		if a.Fever {
			result.Payload.FeverPatients = append(result.Payload.FeverPatients, id)
		}
		if a.HighRisk() {
			result.Payload.HighRiskPatients = append(result.Payload.HighRiskPatients, id)
		}
		result.Classified++

		c.logger.Debug().
			Str("patient_id", id).
			Int("bp_risk", a.Score.BloodPressure).
			Int("temp_risk", a.Score.Temperature).
			Int("age_risk", a.Score.Age).
			Int("total", a.Score.Total()).
			Bool("fever", a.Fever).
			Bool("data_quality_issue", a.DataQualityIssue).
			Msgf("[%d/%d] classified", idx+1, len(records))
	}

	return result
}

func truncateRaw(raw []byte) string {
	const limit = 80
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}
