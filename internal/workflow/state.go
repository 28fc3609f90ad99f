package workflow

// State names which pass a run executes.
type State int

const (
	// StateUninitialized selects the inventory pass: scan the DICOM tree and
	// bootstrap a translator template.
	StateUninitialized State = iota
	// StateReady selects the translation pass: convert sessions and write the
	// participants manifest.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DecideState computes the startup state from the two filesystem predicates.
// Pure function so pass selection is independently testable.
func DecideState(translatorExists, translatorNonEmpty, outputRootExists bool) State {
	if translatorExists && translatorNonEmpty && outputRootExists {
		return StateReady
	}
	return StateUninitialized
}
