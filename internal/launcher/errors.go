package launcher

// launchInProgressError signals that another launch holds the gate (409 mapping).
type launchInProgressError struct{ modelName string }

func (e launchInProgressError) Error() string { return "launch already in progress: " + e.modelName }

// IsLaunchInProgress reports whether err indicates the launch gate was held.
func IsLaunchInProgress(err error) bool {
	_, ok := err.(launchInProgressError)
	return ok
}

// selectionIncompleteError signals a launch attempt without a full selection (400 mapping).
type selectionIncompleteError struct{ reason string }

func (e selectionIncompleteError) Error() string { return "selection incomplete: " + e.reason }

// ErrSelectionIncomplete constructs a selectionIncompleteError.
func ErrSelectionIncomplete(reason string) error { return selectionIncompleteError{reason: reason} }

// IsSelectionIncomplete reports whether err indicates a missing selection field.
func IsSelectionIncomplete(err error) bool {
	_, ok := err.(selectionIncompleteError)
	return ok
}
