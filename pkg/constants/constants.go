// Package constants provides shared constants used throughout the harvestsync codebase.
// This includes timeouts, page sizes, file permissions and the well-known
// endpoints of the Rentman and Harvest APIs.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to Rentman and Harvest
	DefaultHTTPTimeout = 30 * time.Second

	// SyncTimeout bounds a single reconciliation run
	SyncTimeout = 10 * time.Minute

	// DefaultSyncInterval is the default interval between runs in periodic mode
	DefaultSyncInterval = 1 * time.Hour

	// MinSyncInterval is the shortest interval accepted for periodic mode
	MinSyncInterval = 1 * time.Minute

	// ShutdownTimeout is how long the CLI waits for cleanup after an error
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Pagination constants
const (
	// RentmanPageSize is the number of records requested per Rentman page
	RentmanPageSize = 300

	// HarvestPageSize is the number of records requested per Harvest page (API maximum is 2000)
	HarvestPageSize = 2000

	// MaxPages bounds pagination loops; reaching it means the snapshot is incomplete
	MaxPages = 100
)

// Endpoint constants
const (
	// RentmanBaseURL is the Rentman API root
	RentmanBaseURL = "https://api.rentman.net"

	// HarvestBaseURL is the Harvest v2 API root
	HarvestBaseURL = "https://api.harvestapp.com/v2"

	// DefaultUserAgent is sent to Harvest when none is configured
	DefaultUserAgent = "harvestsync"
)

// Path constants
const (
	// DefaultConfigName is the config file name searched in $HOME and the working directory
	DefaultConfigName = ".harvestsync"

	// DefaultJournalPath is the default location of the run journal database
	DefaultJournalPath = "~/.local/share/harvestsync/journal.db"
)

// Format constants
const (
	// TimeFormatHuman is a human-readable time format
	TimeFormatHuman = "Jan 2, 2006 at 3:04pm MST"
)
