package service

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"

	"gotriage/internal/models"
)

func collection(raws ...string) models.PatientCollection {
	out := make(models.PatientCollection, 0, len(raws))
	for _, r := range raws {
		out = append(out, json.RawMessage(r))
	}
	return out
}

func TestClassify_Cohorts(t *testing.T) {
	coll := collection(
		`{"patient_id":"P1","blood_pressure":"120/80","temperature":98.6,"age":45}`,
		`{"patient_id":"P2","blood_pressure":"150/95","temperature":101.0,"age":70}`,
		`{"patient_id":"P3","blood_pressure":null,"temperature":99.6,"age":30}`,
		`{"patient_id":"P4","blood_pressure":"110/70","temperature":"99.6","age":25}`,
		`{"patient_id":"P5","blood_pressure":"120/79","temperature":98.0,"age":70}`,
		`{"patient_id":"P6","blood_pressure":"110/70","temperature":98.0,"age":70}`,
	)

	res := NewClassifier(zerolog.Nop()).Classify(coll)

	// P1: 3+0+1=4; P2: 4+2+2=8; P3: 0+1+1=2; P4: 1+0+1=2; P5: 2+0+2=4; P6: 1+0+2=3
	if want := []string{"P1", "P2", "P5"}; !equalStrings(res.Payload.HighRiskPatients, want) {
		t.Errorf("high risk: expected %v, got %v", want, res.Payload.HighRiskPatients)
	}
	if want := []string{"P2", "P3"}; !equalStrings(res.Payload.FeverPatients, want) {
		t.Errorf("fever: expected %v, got %v", want, res.Payload.FeverPatients)
	}
	if want := []string{"P3", "P4"}; !equalStrings(res.Payload.DataQualityIssues, want) {
		t.Errorf("data quality: expected %v, got %v", want, res.Payload.DataQualityIssues)
	}
	if res.Classified != 6 || res.Skipped != 0 {
		t.Errorf("expected 6 classified, 0 skipped, got %d/%d", res.Classified, res.Skipped)
	}
}

func TestClassify_SkipsNonObjects(t *testing.T) {
	coll := collection(
		`null`,
		`"DEMO"`,
		`[1,2]`,
		`42`,
		`{"patient_id":"P1","blood_pressure":"160/100","temperature":102,"age":80}`,
	)

	res := NewClassifier(zerolog.Nop()).Classify(coll)
	if res.Skipped != 4 || res.Classified != 1 {
		t.Errorf("expected 4 skipped and 1 classified, got %d/%d", res.Skipped, res.Classified)
	}
	if !equalStrings(res.Payload.HighRiskPatients, []string{"P1"}) {
		t.Errorf("expected only P1 high risk, got %v", res.Payload.HighRiskPatients)
	}
	if len(res.Payload.DataQualityIssues) != 0 {
		t.Errorf("skipped entries must not be flagged, got %v", res.Payload.DataQualityIssues)
	}
}

func TestClassify_KeepsDuplicates(t *testing.T) {
	rec := `{"patient_id":"DUP","blood_pressure":"150/95","temperature":101,"age":70}`
	res := NewClassifier(zerolog.Nop()).Classify(collection(rec, rec))

	if !equalStrings(res.Payload.HighRiskPatients, []string{"DUP", "DUP"}) {
		t.Errorf("expected duplicate ids kept, got %v", res.Payload.HighRiskPatients)
	}
	if !equalStrings(res.Payload.FeverPatients, []string{"DUP", "DUP"}) {
		t.Errorf("expected duplicate fever ids kept, got %v", res.Payload.FeverPatients)
	}
}

func TestClassify_EmptyCollection(t *testing.T) {
	res := NewClassifier(zerolog.Nop()).Classify(nil)
	p := res.Payload
	if p.HighRiskPatients == nil || p.FeverPatients == nil || p.DataQualityIssues == nil {
		t.Error("expected non-nil empty cohort lists")
	}
	if len(p.HighRiskPatients)+len(p.FeverPatients)+len(p.DataQualityIssues) != 0 {
		t.Errorf("expected empty cohorts, got %+v", p)
	}
}
