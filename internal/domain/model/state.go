package model

// LagState is the three-deep memory of earlier reception predictions.
type LagState struct {
	Lag30 float64 // previous slot
	Lag60 float64 // two slots back
	Lag90 float64 // three slots back
}

// Shift pushes reception in as the newest value and drops the oldest.
func (l LagState) Shift(reception int) LagState {
	return LagState{
		Lag30: float64(reception),
		Lag60: l.Lag30,
		Lag90: l.Lag60,
	}
}

// QueueState is the queue length carried into the start of the next slot.
type QueueState int
