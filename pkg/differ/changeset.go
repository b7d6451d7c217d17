package differ

import (
	"fmt"
	"io"
	"strings"
)

// Changeset groups the field changes of one reconciliation run.
type Changeset struct {
	Changes []FieldChange
	Summary ChangesetSummary
}

// ChangesetSummary provides summary statistics for a changeset.
type ChangesetSummary struct {
	Added        int
	Updated      int
	Skipped      int
	TotalChanges int
}

// NewChangeset builds a changeset and its summary.
func NewChangeset(changes []FieldChange) *Changeset {
	return &Changeset{Changes: changes, Summary: calculateSummary(changes)}
}

// calculateSummary computes the summary for a list of changes.
func calculateSummary(changes []FieldChange) ChangesetSummary {
	var s ChangesetSummary
	for _, c := range changes {
		switch c.Type {
		case ChangeTypeAdd:
			s.Added++
		case ChangeTypeUpdate:
			s.Updated++
		case ChangeTypeSkip:
			s.Skipped++
		}
	}
	s.TotalChanges = s.Added + s.Updated
	return s
}

// IsEmpty returns true if the changeset contains no applicable changes.
func (c *Changeset) IsEmpty() bool {
	return c.Summary.TotalChanges == 0
}

// HasChanges returns true if the changeset contains any applicable changes.
func (c *Changeset) HasChanges() bool {
	return c.Summary.TotalChanges > 0
}

// String returns a human-readable summary of the changeset.
func (c *Changeset) String() string {
	if c.IsEmpty() && c.Summary.Skipped == 0 {
		return "No changes detected"
	}

	parts := []string{}
	if c.Summary.Added > 0 {
		parts = append(parts, fmt.Sprintf("%d added", c.Summary.Added))
	}
	if c.Summary.Updated > 0 {
		parts = append(parts, fmt.Sprintf("%d updated", c.Summary.Updated))
	}
	if c.Summary.Skipped > 0 {
		parts = append(parts, fmt.Sprintf("%d skipped", c.Summary.Skipped))
	}
	return fmt.Sprintf("Changeset: %s (Total: %d changes)", strings.Join(parts, ", "), c.Summary.TotalChanges)
}

// Print writes a detailed, human-readable view of the changeset.
func (c *Changeset) Print(w io.Writer) {
	fmt.Fprintln(w, c.String())
	if len(c.Changes) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Repeat("─", 80))
	for _, change := range c.Changes {
		switch change.Type {
		case ChangeTypeAdd:
			fmt.Fprintf(w, "  + %s: %s\n", change.Path, truncateString(change.NewValue, 60))
		case ChangeTypeUpdate:
			fmt.Fprintf(w, "  ~ %s: %s → %s\n", change.Path,
				truncateString(change.OldValue, 40), truncateString(change.NewValue, 40))
		case ChangeTypeSkip:
			fmt.Fprintf(w, "  ! %s: wanted %s\n", change.Path, truncateString(change.NewValue, 60))
		}
	}
}
