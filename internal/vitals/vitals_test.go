package vitals

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseBloodPressure_Valid(t *testing.T) {
	cases := map[string]BloodPressure{
		"120/80":     {120, 80},
		"90/60":      {90, 60},
		" 150 / 95":  {150, 95},
		"120abc/80":  {120, 80},
		"140/90mmHg": {140, 90},
		"+130/-5":    {130, -5},
	}
	for in, want := range cases {
		got, ok := ParseBloodPressure(in)
		if !ok {
			t.Errorf("%q: expected valid", in)
			continue
		}
		if got != want {
			t.Errorf("%q: expected %+v, got %+v", in, want, got)
		}
	}
}

func TestParseBloodPressure_Invalid(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"120",
		"120-80",
		"/80",
		"120/",
		"abc/80",
		"120/abc",
		"120/80/70",
		"N/A",
		120,
		120.5,
		true,
		[]any{"120", "80"},
		map[string]any{"systolic": 120},
	}
	for _, in := range inputs {
		if bp, ok := ParseBloodPressure(in); ok {
			t.Errorf("%#v: expected invalid, got %+v", in, bp)
		}
	}
}

func TestParseTemperatureAndAge_Strict(t *testing.T) {
	valid := []any{98.6, float64(0), 101, int64(45), float32(99.5)}
	for _, in := range valid {
		if _, ok := ParseTemperature(in); !ok {
			t.Errorf("%#v: expected valid temperature", in)
		}
		if _, ok := ParseAge(in); !ok {
			t.Errorf("%#v: expected valid age", in)
		}
	}

	invalid := []any{nil, "98.6", "45", "", true, math.NaN(), json.RawMessage("45")}
	for _, in := range invalid {
		if _, ok := ParseTemperature(in); ok {
			t.Errorf("%#v: expected invalid temperature", in)
		}
		if _, ok := ParseAge(in); ok {
			t.Errorf("%#v: expected invalid age", in)
		}
	}
}

func TestBloodPressureRisk_Boundaries(t *testing.T) {
	cases := []struct {
		sys, dia int
		want     int
	}{
		{119, 79, 1},
		{120, 79, 2},
		{129, 79, 2},
		{130, 79, 3},
		{139, 79, 3},
		{119, 80, 3},
		{125, 89, 3},
		{140, 70, 4},
		{140, 85, 3}, // stage 1 rule is checked before stage 2
		{180, 60, 4},
		{110, 90, 4},
		{135, 95, 3},
	}
	for _, c := range cases {
		got := BloodPressureRisk(BloodPressure{c.sys, c.dia}, true)
		if got != c.want {
			t.Errorf("%d/%d: expected %d, got %d", c.sys, c.dia, c.want, got)
		}
	}

	if got := BloodPressureRisk(BloodPressure{200, 120}, false); got != 0 {
		t.Errorf("invalid reading: expected 0, got %d", got)
	}
}

func TestTemperatureRisk(t *testing.T) {
	cases := []struct {
		temp float64
		want int
	}{
		{97.0, 0},
		{99.5, 0},
		{99.55, 0},
		{99.6, 1},
		{100.9, 1},
		{100.95, 0},
		{101, 2},
		{104.2, 2},
	}
	for _, c := range cases {
		if got := TemperatureRisk(c.temp, true); got != c.want {
			t.Errorf("%v: expected %d, got %d", c.temp, c.want, got)
		}
	}
	if got := TemperatureRisk(104, false); got != 0 {
		t.Errorf("invalid temperature: expected 0, got %d", got)
	}
}

func TestAgeRisk(t *testing.T) {
	cases := []struct {
		age  float64
		want int
	}{
		{0, 1},
		{39, 1},
		{40, 1},
		{65, 1},
		{65.5, 2},
		{66, 2},
		{90, 2},
	}
	for _, c := range cases {
		if got := AgeRisk(c.age, true); got != c.want {
			t.Errorf("%v: expected %d, got %d", c.age, c.want, got)
		}
	}
	if got := AgeRisk(80, false); got != 0 {
		t.Errorf("invalid age: expected 0, got %d", got)
	}
}

func TestAssess_TotalRange(t *testing.T) {
	bps := []any{nil, "110/70", "125/70", "135/85", "160/100", "bad"}
	temps := []any{nil, 98.0, 100.0, 102.5, "101"}
	ages := []any{nil, 30.0, 50.0, 80.0, "80"}

	for _, bp := range bps {
		for _, temp := range temps {
			for _, age := range ages {
				a := Assess(map[string]any{FieldBloodPressure: bp, FieldTemperature: temp, FieldAge: age})
				total := a.Score.Total()
				if total < 0 || total > 8 {
					t.Fatalf("total %d out of range for %v %v %v", total, bp, temp, age)
				}
			}
		}
	}

	top := Assess(map[string]any{FieldBloodPressure: "160/100", FieldTemperature: 102.5, FieldAge: 80.0})
	if top.Score.Total() != 8 {
		t.Errorf("expected max total 8, got %d", top.Score.Total())
	}
}

func TestAssess_DataQualityIssue(t *testing.T) {
	clean := map[string]any{FieldBloodPressure: "120/80", FieldTemperature: 98.6, FieldAge: 40.0}
	if Assess(clean).DataQualityIssue {
		t.Error("expected no data quality issue for a clean record")
	}

	broken := []map[string]any{
		{FieldBloodPressure: nil, FieldTemperature: 98.6, FieldAge: 40.0},
		{FieldBloodPressure: "120/80", FieldTemperature: "98.6", FieldAge: 40.0},
		{FieldBloodPressure: "120/80", FieldTemperature: 98.6, FieldAge: "forty"},
		{FieldTemperature: 98.6, FieldAge: 40.0},
		{},
	}
	for i, rec := range broken {
		if !Assess(rec).DataQualityIssue {
			t.Errorf("case %d: expected data quality issue", i)
		}
	}

	// Flagged independently of the score: a high-risk record can still be flagged.
	a := Assess(map[string]any{FieldBloodPressure: "180/110", FieldTemperature: 103.0, FieldAge: "n/a"})
	if !a.DataQualityIssue || !a.HighRisk() {
		t.Errorf("expected flagged high-risk record, got %+v", a)
	}
}

func TestAssess_Fever(t *testing.T) {
	cases := []struct {
		temp any
		want bool
	}{
		{99.6, true},
		{101.0, true},
		{99.5, false},
		{"99.6", false},
		{"102", false},
		{nil, false},
	}
	for _, c := range cases {
		a := Assess(map[string]any{FieldTemperature: c.temp})
		if a.Fever != c.want {
			t.Errorf("%#v: expected fever=%v, got %v", c.temp, c.want, a.Fever)
		}
	}
}

func TestAssessment_HighRiskThreshold(t *testing.T) {
	// 120/79 (2) + 98 (0) + 70 (2) = 4
	four := Assess(map[string]any{FieldBloodPressure: "120/79", FieldTemperature: 98.0, FieldAge: 70.0})
	if four.Score.Total() != 4 || !four.HighRisk() {
		t.Errorf("expected total 4 to be high risk, got %+v", four.Score)
	}

	// 110/70 (1) + 98 (0) + 70 (2) = 3
	three := Assess(map[string]any{FieldBloodPressure: "110/70", FieldTemperature: 98.0, FieldAge: 70.0})
	if three.Score.Total() != 3 || three.HighRisk() {
		t.Errorf("expected total 3 to be excluded, got %+v", three.Score)
	}
}
