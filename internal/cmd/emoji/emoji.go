// Package emoji provides symbol constants for CLI output.
package emoji

// Status symbols.
const (
	// Success marks a completed run.
	Success = "✓"

	// Error marks a failed run or operation.
	Error = "✗"

	// Warning marks a non-fatal problem.
	Warning = "!"

	// Info marks informational output such as dry-run summaries.
	Info = "i"

	// Spinner marks a run that has not finished.
	Spinner = "..."
)

// Action symbols, matching the changeset printout.
const (
	// Add marks a record that will be created in Harvest.
	Add = "+"

	// Update marks a field that will be changed in Harvest.
	Update = "~"

	// Skip marks a record or field left alone.
	Skip = "-"
)
