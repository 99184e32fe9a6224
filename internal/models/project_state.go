package models

// ProjectState classifies a target directory before scaffolding.
type ProjectState int

const (
	// StateAbsent means the target path does not exist
	StateAbsent ProjectState = iota

	// StateEmptyDir means the target is an existing, empty directory
	StateEmptyDir

	// StateRecognizedExisting means the target already holds an entry point and an environment
	StateRecognizedExisting

	// StateUnrecognizedNonEmpty means the target has content this tool does not recognize
	StateUnrecognizedNonEmpty
)

// String returns a human readable name of the state
func (s ProjectState) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateEmptyDir:
		return "empty"
	case StateRecognizedExisting:
		return "existing project"
	case StateUnrecognizedNonEmpty:
		return "non-empty"
	default:
		return "unknown"
	}
}

// NeedsConfirmation reports whether the user must approve writing into the target.
func (s ProjectState) NeedsConfirmation() bool {
	return s == StateUnrecognizedNonEmpty
}

// CanProceed reports whether scaffolding may write into the target at all.
func (s ProjectState) CanProceed() bool {
	return s != StateRecognizedExisting
}
