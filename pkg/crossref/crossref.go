// Package crossref implements the identity matching between Rentman records
// and Harvest records. Harvest has no field for a foreign id, so the Rentman
// id is stored as text in a free-form field (a client's address, a project's
// notes). A parsed field is one of three states: absent, malformed or present.
package crossref

import (
	"context"
	"strconv"
	"strings"

	"github.com/agentstation/harvestsync/pkg/errors"
	"github.com/agentstation/harvestsync/pkg/logging"
)

// State is the parse state of a cross-reference field.
type State int

const (
	// Absent means the field is nil or blank.
	Absent State = iota
	// Malformed means the field holds text that is not an integer.
	Malformed
	// Present means the field holds an integer id.
	Present
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	case Present:
		return "present"
	default:
		return "unknown"
	}
}

// ID is a parsed cross-reference.
type ID struct {
	state State
	value int64
	raw   string
}

// Parse reads a cross-reference field.
func Parse(field *string) ID {
	if field == nil {
		return ID{state: Absent}
	}
	raw := strings.TrimSpace(*field)
	if raw == "" {
		return ID{state: Absent}
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ID{state: Malformed, raw: raw}
	}
	return ID{state: Present, value: v, raw: raw}
}

// Of returns a present ID for value.
func Of(value int64) ID {
	return ID{state: Present, value: value, raw: Format(value)}
}

// State returns the parse state.
func (id ID) State() State { return id.state }

// Value returns the parsed id and whether it is present.
func (id ID) Value() (int64, bool) {
	return id.value, id.state == Present
}

// Raw returns the trimmed field text.
func (id ID) Raw() string { return id.raw }

// Matches reports whether the field links to sourceID.
// Only present ids match; a malformed field never matches, not even 0.
func (id ID) Matches(sourceID int64) bool {
	return id.state == Present && id.value == sourceID
}

// String renders the id for logs.
func (id ID) String() string {
	switch id.state {
	case Present:
		return id.raw
	case Malformed:
		return "malformed(" + id.raw + ")"
	default:
		return "absent"
	}
}

// Format renders a Rentman id in the form stored in Harvest.
func Format(id int64) string {
	return strconv.FormatInt(id, 10)
}

// FromURI normalizes a Rentman relation such as "/contacts/42" to 42.
func FromURI(ref, prefix string) (int64, error) {
	trimmed := strings.TrimSpace(ref)
	if !strings.HasPrefix(trimmed, prefix) {
		return 0, errors.NewParseError("uri", ref, "expected prefix "+prefix, nil)
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(trimmed, prefix), 10, 64)
	if err != nil {
		return 0, errors.NewParseError("uri", ref, "id is not an integer", err)
	}
	return v, nil
}

// Find returns the first item whose cross-reference field links to sourceID.
// The scan is linear and collisions are not deduplicated: the first match in
// slice order wins. Absent and malformed fields are logged once per scan, and
// only when nothing matches.
func Find[T any](ctx context.Context, items []T, field func(T) *string, sourceID int64) (T, bool) {
	absent := 0
	var malformed []string
	for _, item := range items {
		id := Parse(field(item))
		switch id.State() {
		case Absent:
			absent++
		case Malformed:
			malformed = append(malformed, id.Raw())
		}
		if id.Matches(sourceID) {
			return item, true
		}
	}

	logger := logging.FromContext(ctx)
	if len(malformed) > 0 {
		logger.Warn().Strs("cross_refs", malformed).Int64("source_id", sourceID).Msg("malformed cross-reference")
	}
	if absent > 0 {
		logger.Debug().Int("absent", absent).Int64("source_id", sourceID).Msg("no cross-reference present")
	}
	var zero T
	return zero, false
}
