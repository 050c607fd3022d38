package controller

// SeqResult classifies an incoming sequenced command against the tracker's
// expected next sequence (spec §4.1 "Sequence policy").
type SeqResult int

const (
	SeqAccept SeqResult = iota
	SeqDuplicate
	SeqGap
)

// SequenceTracker implements the two-counter sequence validation described
// in spec §3 ("Sequence tracker") and §4.1. It is owned exclusively by the
// controller's main loop (single-writer), matching spec §9's requirement
// that controller state be explicit and passed by reference rather than
// implicit.
type SequenceTracker struct {
	expectedNext uint64
	lastAcked    uint64
}

// NewSequenceTracker returns a tracker expecting N1 first.
func NewSequenceTracker() *SequenceTracker {
	return &SequenceTracker{expectedNext: 1}
}

// ExpectedNext returns the sequence number the tracker currently expects.
func (t *SequenceTracker) ExpectedNext() uint64 {
	return t.expectedNext
}

// LastAcked returns the highest sequence number accepted so far.
func (t *SequenceTracker) LastAcked() uint64 {
	return t.lastAcked
}

// Check classifies seq without mutating tracker state (spec §4.1 steps 1-3).
func (t *SequenceTracker) Check(seq uint64) SeqResult {
	switch {
	case seq < t.expectedNext:
		return SeqDuplicate
	case seq > t.expectedNext:
		return SeqGap
	default:
		return SeqAccept
	}
}

// Advance records seq as accepted: lastAcked = seq, expectedNext = seq + 1.
// Callers must only call Advance after Check(seq) == SeqAccept.
func (t *SequenceTracker) Advance(seq uint64) {
	t.lastAcked = seq
	t.expectedNext = seq + 1
}

// Reset returns the tracker to expecting N1, as happens when homing
// completes (spec §3 "Reset to 1 after homing completes").
func (t *SequenceTracker) Reset() {
	t.expectedNext = 1
	t.lastAcked = 0
}
