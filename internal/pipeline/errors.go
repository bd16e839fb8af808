package pipeline

import (
	"fmt"
	"strings"
)

// SchemaError reports dataset records missing a column the task
// requires. It names the offending columns so a failing run is
// actionable without digging through the dataset.
type SchemaError struct {
	// Task is the task name whose schema was violated.
	Task string

	// Columns are the required columns that were absent or empty.
	Columns []string

	// ExampleID identifies the first offending record, when known.
	ExampleID string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("task %s requires columns [%s]", e.Task, strings.Join(e.Columns, ", "))
	if e.ExampleID != "" {
		msg += fmt.Sprintf(" (first missing on example %s)", e.ExampleID)
	}
	return msg
}

// NotTrainedError reports that a structural probe of the model's
// outputs does not match what the task expects, meaning the model was
// not trained (or exported) for this task.
type NotTrainedError struct {
	// Task is the task the model was probed for.
	Task string

	// Model is the model name.
	Model string
}

// Error implements the error interface.
func (e *NotTrainedError) Error() string {
	return fmt.Sprintf("model %s does not appear to be trained for task %s", e.Model, e.Task)
}
