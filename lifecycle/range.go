package lifecycle

// TimeRange is the nominal active window of an animated object plus its
// lead-in/lead-out. All values are milliseconds on the reference timeline.
type TimeRange struct {
	StartMs int64
	EndMs   int64
	HeadMs  int64
	TailMs  int64
}

// Duration returns the nominal active duration in milliseconds
func (r TimeRange) Duration() int64 {
	return r.EndMs - r.StartMs
}

// EnterMs returns the timeline position where the lead-in begins
func (r TimeRange) EnterMs() int64 {
	return r.StartMs - r.HeadMs
}

// LeaveMs returns the timeline position where the lead-out ends
func (r TimeRange) LeaveMs() int64 {
	return r.EndMs + r.TailMs
}
