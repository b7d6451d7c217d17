package reconciler

import "github.com/agentstation/harvestsync/pkg/errors"

// Options configures project planning.
type Options struct {
	// FallbackClientID receives projects without a usable customer.
	FallbackClientID int64
	// ExcludedCustomerID marks a customer whose projects are never synced.
	// 0 disables the exclusion instead of matching projects whose customer
	// id is 0; those go to FallbackClientID like any other customerless
	// project.
	ExcludedCustomerID int64
	// SymmetricActive also reactivates inactive Harvest projects.
	// By default projects are only ever deactivated.
	SymmetricActive bool
	// PendingClients lists contact ids whose clients are planned but not yet
	// created, as in a dry run.
	PendingClients []int64
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.FallbackClientID <= 0 {
		return errors.NewValidationError("fallback_client_id", o.FallbackClientID, "must be a Harvest client id")
	}
	if o.ExcludedCustomerID < 0 {
		return errors.NewValidationError("excluded_customer_id", o.ExcludedCustomerID, "must not be negative")
	}
	return nil
}

func (o Options) pending(contactID int64) bool {
	for _, id := range o.PendingClients {
		if id == contactID {
			return true
		}
	}
	return false
}
