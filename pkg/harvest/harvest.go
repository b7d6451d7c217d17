// Package harvest defines the Harvest records that harvestsync creates and
// updates, along with the payloads of the write calls.
package harvest

// Billing defaults applied to every project created by the sync.
const (
	BillByNone   = "none"
	BudgetByNone = "none"
)

// Client is a Harvest client. Address holds the Rentman contact id.
type Client struct {
	ID       int64   `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	IsActive bool    `json:"is_active" yaml:"is_active"`
	Address  *string `json:"address" yaml:"address,omitempty"`
}

// Project is a Harvest project. Notes holds the Rentman project id.
type Project struct {
	ID       int64   `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Code     *string `json:"code" yaml:"code,omitempty"`
	IsActive bool    `json:"is_active" yaml:"is_active"`
	Notes    *string `json:"notes" yaml:"notes,omitempty"`
	ClientID int64   `json:"client_id" yaml:"client_id"`
}

// NewClient is the payload of a client create call.
type NewClient struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// ClientPatch carries the fields of a client update; nil fields are unchanged.
type ClientPatch struct {
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NewProject is the payload of a project create call.
type NewProject struct {
	ClientID   int64  `json:"client_id" yaml:"client_id"`
	Name       string `json:"name" yaml:"name"`
	Code       string `json:"code" yaml:"code"`
	Notes      string `json:"notes" yaml:"notes"`
	IsActive   bool   `json:"is_active" yaml:"is_active"`
	IsBillable bool   `json:"is_billable" yaml:"is_billable"`
	BillBy     string `json:"bill_by" yaml:"bill_by"`
	BudgetBy   string `json:"budget_by" yaml:"budget_by"`
}

// ProjectPatch carries the fields of a project update; nil fields are unchanged.
type ProjectPatch struct {
	Name     *string `json:"name,omitempty" yaml:"name,omitempty"`
	Code     *string `json:"code,omitempty" yaml:"code,omitempty"`
	ClientID *int64  `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty" yaml:"is_active,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectPatch) Empty() bool {
	return p.Name == nil && p.Code == nil && p.ClientID == nil && p.IsActive == nil
}
