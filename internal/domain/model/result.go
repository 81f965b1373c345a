package model

// SlotResult is the forecast for a single slot.
type SlotResult struct {
	Time        string `json:"time"`
	Reception   int    `json:"reception_count"`
	Queue       int    `json:"queue_length"`
	WaitMinutes int    `json:"wait_minutes"`
}

// Report is the ordered forecast for one run.
type Report struct {
	RunID          string       `json:"run_id"`
	Date           string       `json:"date"`
	TotalPatients  int          `json:"total_patients"`
	Weather        string       `json:"weather"`
	Holiday        bool         `json:"is_holiday"`
	PrevDayHoliday bool         `json:"is_prev_day_holiday"`
	Slots          []SlotResult `json:"slots"`
}

// Peak returns the slot with the longest predicted wait. The first such slot
// wins ties. ok is false for an empty report.
func (r Report) Peak() (SlotResult, bool) {
	if len(r.Slots) == 0 {
		return SlotResult{}, false
	}
	best := r.Slots[0]
	for _, s := range r.Slots[1:] {
		if s.WaitMinutes > best.WaitMinutes {
			best = s
		}
	}
	return best, true
}

// TotalReception sums the predicted reception counts across the day.
func (r Report) TotalReception() int {
	total := 0
	for _, s := range r.Slots {
		total += s.Reception
	}
	return total
}
