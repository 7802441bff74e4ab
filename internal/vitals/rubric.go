package vitals

const (
	FeverThreshold    = 99.6
	HighRiskThreshold = 4
)

// BloodPressureRisk applies the staging rules in order; the first match wins.
// An invalid reading scores 0.
func BloodPressureRisk(bp BloodPressure, ok bool) int {
	if !ok {
		return 0
	}
	sys, dia := bp.Systolic, bp.Diastolic

	switch {
	case sys < 120 && dia < 80:
		return 1 // normal
	case sys >= 120 && sys <= 129 && dia < 80:
		return 2 // elevated
	case (sys >= 130 && sys <= 139) || (dia >= 80 && dia <= 89):
		return 3 // stage 1
	case sys >= 140 || dia >= 90:
		return 4 // stage 2
	}
	return 0
}

// TemperatureRisk scores in Fahrenheit. Values between the table's bands
// (99.55, 100.95) match nothing and score 0.
func TemperatureRisk(temp float64, ok bool) int {
	if !ok {
		return 0
	}
	switch {
	case temp <= 99.5:
		return 0
	case temp >= 99.6 && temp <= 100.9:
		return 1
	case temp >= 101:
		return 2
	}
	return 0
}

func AgeRisk(age float64, ok bool) int {
	if !ok {
		return 0
	}
	switch {
	case age < 40:
		return 1
	case age <= 65:
		return 1
	case age > 65:
		return 2
	}
	return 0
}

type Score struct {
	BloodPressure int
	Temperature   int
	Age           int
}

func (s Score) Total() int {
	return s.BloodPressure + s.Temperature + s.Age
}
