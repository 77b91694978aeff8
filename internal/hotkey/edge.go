package hotkey

// Detect reports a rising edge of a sampled key.
//
// With the gate disabled, or enabled and satisfied, triggered is
// current && !previous and the returned state is current. With the gate
// enabled but not satisfied nothing triggers and previous is returned
// unchanged, so releasing the gate key cannot manufacture an edge once the
// gate reopens.
func Detect(current, previous, gateEnabled, gateSatisfied bool) (triggered, nextPrevious bool) {
	if gateEnabled && !gateSatisfied {
		return false, previous
	}
	return current && !previous, current
}

// EdgeState holds the previous sample of each logical control. It belongs
// to a single sampling goroutine and is not safe for concurrent use.
type EdgeState struct {
	prev [numControls]bool
}

// Sample feeds one raw sample for c through Detect and stores the new state.
func (e *EdgeState) Sample(c Control, current, gateEnabled, gateSatisfied bool) bool {
	triggered, next := Detect(current, e.prev[c], gateEnabled, gateSatisfied)
	e.prev[c] = next
	return triggered
}

// Previous returns the stored sample for c.
func (e *EdgeState) Previous(c Control) bool {
	return e.prev[c]
}
