package desktop

import "sync"

// Presentation controls how a fired alarm is surfaced. It is configured once
// per process; badges are accepted but no desktop backend draws them.
type Presentation struct {
	ShowAlert bool
	PlaySound bool
	SetBadge  bool
}

func DefaultPresentation() Presentation {
	return Presentation{ShowAlert: true, PlaySound: true, SetBadge: false}
}

var (
	presentationMu  sync.RWMutex
	presentation    = DefaultPresentation()
	presentationSet bool
)

// ConfigurePresentation installs p for the rest of the process. Only the
// first call wins; later calls report false and change nothing.
func ConfigurePresentation(p Presentation) bool {
	presentationMu.Lock()
	defer presentationMu.Unlock()
	if presentationSet {
		return false
	}
	presentation = p
	presentationSet = true
	return true
}

func CurrentPresentation() Presentation {
	presentationMu.RLock()
	defer presentationMu.RUnlock()
	return presentation
}
