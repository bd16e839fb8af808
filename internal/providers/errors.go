package providers

import "fmt"

// CapabilityError reports that the active framework cannot perform the
// requested task. It is raised before any inference call is attempted
// and always names both sides of the mismatch.
type CapabilityError struct {
	// Framework is the framework variant that was asked.
	Framework Framework

	// Task is the human-readable task name that was requested.
	Task string
}

// Error implements the error interface.
func (e *CapabilityError) Error() string {
	return fmt.Sprintf("framework %s cannot handle task %s", e.Framework, e.Task)
}
