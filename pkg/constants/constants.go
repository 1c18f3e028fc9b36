// Package constants provides shared constants for the revenue-forecast application.
package constants

import "time"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// BaseYear is the year assumed for records that carry no start year.
	BaseYear = 2026

	// LastSupportedYear is the final year of the default forecast range.
	LastSupportedYear = 2028
)

// Financial constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// FullProbability is the probability used for optimistic projections.
	FullProbability = 1.0

	// ConcentrationRiskPercent is the Ignis share above which revenue is
	// considered concentrated.
	ConcentrationRiskPercent = 40.0

	// DefaultTopOpportunities is the default length of the top opportunity list.
	DefaultTopOpportunities = 7
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. FORECAST_STORAGE_DRIVER.
	EnvPrefix = "FORECAST"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"

	// DefaultStorePath is the default location of the YAML project store.
	DefaultStorePath = "projects.yaml"

	// StoreVersion is the document version written by the file store.
	StoreVersion = 1
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes caps JSON request bodies (256 KB)
	DefaultMaxBodySizeBytes int64 = 256 * 1024

	// DefaultReadTimeout and DefaultWriteTimeout bound a single request
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 15 * time.Second

	// DefaultShutdownTimeout is how long in-flight requests get on shutdown
	DefaultShutdownTimeout = 10 * time.Second
)
