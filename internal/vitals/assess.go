package vitals

// Record field names as delivered by the upstream API.
const (
	FieldBloodPressure = "blood_pressure"
	FieldTemperature   = "temperature"
	FieldAge           = "age"
)

type Assessment struct {
	Score            Score
	Fever            bool
	DataQualityIssue bool
}

func (a Assessment) HighRisk() bool {
	return a.Score.Total() >= HighRiskThreshold
}

// Assess scores one decoded patient record. Missing keys behave exactly like
// malformed values.
func Assess(fields map[string]any) Assessment {
	bp, bpOK := ParseBloodPressure(fields[FieldBloodPressure])
	temp, tempOK := ParseTemperature(fields[FieldTemperature])
	age, ageOK := ParseAge(fields[FieldAge])

	return Assessment{
		Score: Score{
			BloodPressure: BloodPressureRisk(bp, bpOK),
			Temperature:   TemperatureRisk(temp, tempOK),
			Age:           AgeRisk(age, ageOK),
		},
		Fever:            HasFever(fields[FieldTemperature]),
		DataQualityIssue: !bpOK || !tempOK || !ageOK,
	}
}

// HasFever looks at the raw temperature value: only a number at or above
// FeverThreshold counts.
func HasFever(raw any) bool {
	t, ok := number(raw)
	return ok && t >= FeverThreshold
}
