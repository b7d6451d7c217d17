package rentman

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/agentstation/harvestsync/pkg/errors"
)

// StatusCode is the workflow state of a subproject.
type StatusCode int

// Known Rentman statuses, numbered as in the /statuses/N relation.
const (
	StatusOption     StatusCode = 1 // Optie
	StatusCancelled  StatusCode = 2 // Geannuleerd
	StatusConfirmed  StatusCode = 3 // Bevestigd
	StatusPrepared   StatusCode = 4 // Klaargezet
	StatusOnLocation StatusCode = 5 // Op locatie
	StatusReturned   StatusCode = 6 // Retour
	StatusRequest    StatusCode = 7 // Aanvraag
	StatusConcept    StatusCode = 8 // Concept
	StatusToInvoice  StatusCode = 9 // Factureren
)

var statusNames = map[StatusCode]string{
	StatusOption:     "Optie",
	StatusCancelled:  "Geannuleerd",
	StatusConfirmed:  "Bevestigd",
	StatusPrepared:   "Klaargezet",
	StatusOnLocation: "OpLocatie",
	StatusReturned:   "Retour",
	StatusRequest:    "Aanvraag",
	StatusConcept:    "Concept",
	StatusToInvoice:  "Factureren",
}

// Valid reports whether s is one of the nine known statuses.
func (s StatusCode) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Active reports whether work in this status still counts as active.
// Cancelled and returned are the only inactive states.
func (s StatusCode) Active() bool {
	return s != StatusCancelled && s != StatusReturned
}

// String returns the Rentman display name.
func (s StatusCode) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "Unknown(" + strconv.Itoa(int(s)) + ")"
}

// URI returns the relation form, e.g. "/statuses/2".
func (s StatusCode) URI() string {
	return StatusPrefix + strconv.Itoa(int(s))
}

// ParseStatus parses the relation form of a status.
func ParseStatus(ref string) (StatusCode, error) {
	if !strings.HasPrefix(ref, StatusPrefix) {
		return 0, errors.NewParseError("uri", ref, "expected prefix "+StatusPrefix, nil)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(ref, StatusPrefix))
	if err != nil {
		return 0, errors.NewParseError("uri", ref, "status is not an integer", err)
	}
	s := StatusCode(n)
	if !s.Valid() {
		return 0, errors.NewParseError("uri", ref, "unknown status", nil)
	}
	return s, nil
}

// MarshalJSON encodes the status as its relation URI.
func (s StatusCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.URI())
}

// UnmarshalJSON decodes a relation URI; unknown statuses are rejected.
func (s *StatusCode) UnmarshalJSON(data []byte) error {
	var ref string
	if err := json.Unmarshal(data, &ref); err != nil {
		return errors.WrapParse("json", "status", err)
	}
	parsed, err := ParseStatus(ref)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML renders the display name in yaml output.
func (s StatusCode) MarshalYAML() (any, error) {
	return s.String(), nil
}
