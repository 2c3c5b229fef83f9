package kpi

// RAG status labels
const (
	StatusGreen = "GREEN"
	StatusAmber = "AMBER"
	StatusRed   = "RED"
	StatusInfo  = "INFO"
)

// RAGStatus classifies a KPI value against its threshold bands. The
// excellent and good bands both read GREEN; a definition without
// thresholds is informational.
func RAGStatus(value float64, t Thresholds) string {
	if t.Empty() {
		return StatusInfo
	}
	if compare(value, t.Excellent) || compare(value, t.Good) {
		return StatusGreen
	}
	if compare(value, t.Warning) {
		return StatusAmber
	}
	return StatusRed
}

func compare(value float64, t Threshold) bool {
	switch t.Operator {
	case ">=":
		return value >= t.Value
	case "<=":
		return value <= t.Value
	case ">":
		return value > t.Value
	case "<":
		return value < t.Value
	case "=":
		return value == t.Value
	default:
		return false
	}
}
