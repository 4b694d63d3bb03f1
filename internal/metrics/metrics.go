package metrics

// Recorder receives notification and persistence events. Implementations
// must be safe for concurrent use.
type Recorder interface {
	AlarmArmed(kind string)
	AlarmArmFailed(kind string)
	AlarmDisarmed()
	AlarmDisarmFailed()
	AlarmFired(kind string)
	AlarmDropped()
	StoreWriteFailed()
}

type Noop struct{}

func (Noop) AlarmArmed(string)     {}
func (Noop) AlarmArmFailed(string) {}
func (Noop) AlarmDisarmed()        {}
func (Noop) AlarmDisarmFailed()    {}
func (Noop) AlarmFired(string)     {}
func (Noop) AlarmDropped()         {}
func (Noop) StoreWriteFailed()     {}

// OrNoop returns r, or a Noop recorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return Noop{}
	}
	return r
}
