// Package differ describes field-level differences between what Harvest holds
// and what Rentman says it should hold.
package differ

import (
	"strconv"

	"github.com/pmezard/go-difflib/difflib"
)

// ChangeType represents the type of change.
type ChangeType string

const (
	// ChangeTypeAdd indicates an item was added.
	ChangeTypeAdd ChangeType = "add"
	// ChangeTypeUpdate indicates an item was updated.
	ChangeTypeUpdate ChangeType = "update"
	// ChangeTypeSkip indicates a change was detected but could not be applied.
	ChangeTypeSkip ChangeType = "skip"
)

// FieldChange represents a change to a specific field.
type FieldChange struct {
	Path     string     `json:"path" yaml:"path"`                               // Field path (e.g., "client_id")
	OldValue string     `json:"old_value,omitempty" yaml:"old_value,omitempty"` // Current Harvest value
	NewValue string     `json:"new_value,omitempty" yaml:"new_value,omitempty"` // Desired value from Rentman
	Type     ChangeType `json:"type" yaml:"type"`
}

// Differ compares single field values.
type Differ struct {
	ignoreFields map[string]bool
	context      int
}

// New creates a Differ with default settings.
func New(opts ...Option) *Differ {
	d := &Differ{
		ignoreFields: make(map[string]bool),
		context:      1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ignored reports whether path is excluded from comparison.
func (d *Differ) Ignored(path string) bool {
	return d.ignoreFields[path]
}

// String returns an update change when old and updated differ, else nil.
// The comparison is exact and case-sensitive.
func (d *Differ) String(path, old, updated string) *FieldChange {
	if old == updated || d.ignoreFields[path] {
		return nil
	}
	return &FieldChange{Path: path, OldValue: old, NewValue: updated, Type: ChangeTypeUpdate}
}

// Int returns an update change when old and updated differ, else nil.
func (d *Differ) Int(path string, old, updated int64) *FieldChange {
	return d.String(path, strconv.FormatInt(old, 10), strconv.FormatInt(updated, 10))
}

// Bool returns an update change when old and updated differ, else nil.
func (d *Differ) Bool(path string, old, updated bool) *FieldChange {
	return d.String(path, strconv.FormatBool(old), strconv.FormatBool(updated))
}

// Unified renders a change as a unified diff between the Harvest and the
// Rentman value. Values without a difference render as an empty string.
func (d *Differ) Unified(change FieldChange) string {
	if change.OldValue == change.NewValue {
		return ""
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(change.OldValue + "\n"),
		B:        difflib.SplitLines(change.NewValue + "\n"),
		FromFile: "harvest/" + change.Path,
		ToFile:   "rentman/" + change.Path,
		Context:  d.context,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return change.OldValue + " → " + change.NewValue
	}
	return text
}

// Added returns an add change for a newly created value.
func Added(path, value string) FieldChange {
	return FieldChange{Path: path, NewValue: value, Type: ChangeTypeAdd}
}

// Skipped returns a skip change for a field that could not be resolved.
func Skipped(path, old, wanted string) FieldChange {
	return FieldChange{Path: path, OldValue: old, NewValue: wanted, Type: ChangeTypeSkip}
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
