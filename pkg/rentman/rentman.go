// Package rentman defines the Rentman records that harvestsync reads.
// Rentman is the source of truth: these values are snapshots taken once per
// run and never written back.
package rentman

// Relation prefixes used by Rentman to reference other records.
const (
	ContactPrefix = "/contacts/"
	ProjectPrefix = "/projects/"
	StatusPrefix  = "/statuses/"
)

// Contact is a person or organization that can be billed.
type Contact struct {
	ID          int64  `json:"id" yaml:"id"`
	DisplayName string `json:"displayname" yaml:"displayname"`
}

// Project is a Rentman project. CustomerID is derived from CustomerRef when
// the snapshot is fetched; 0 means no customer or an unparsable reference.
type Project struct {
	ID          int64   `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	CustomerRef *string `json:"customer" yaml:"customer,omitempty"`
	CustomerID  int64   `json:"-" yaml:"customer_id"`
	Number      int64   `json:"number" yaml:"number"`
}

// Subproject belongs to a project through ProjectRef; ProjectID is derived
// from it at fetch time.
type Subproject struct {
	ID         int64      `json:"id" yaml:"id"`
	ProjectRef string     `json:"project" yaml:"project"`
	ProjectID  int64      `json:"-" yaml:"project_id"`
	Status     StatusCode `json:"status" yaml:"status"`
	IsTemplate bool       `json:"is_template" yaml:"is_template"`
}
