// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/viper"

	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
	"github.com/iwvelando/revenue-forecast/internal/store"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
	"github.com/iwvelando/revenue-forecast/pkg/validation"
)

// Configuration holds all configuration for revenue-forecast.
type Configuration struct {
	Logging  LoggingConfig     `yaml:"logging,omitempty" mapstructure:"logging"`
	Output   OutputConfig      `yaml:"output,omitempty" mapstructure:"output"`
	Forecast ForecastConfig    `yaml:"forecast" mapstructure:"forecast"`
	Storage  StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Server   ServerConfig      `yaml:"server" mapstructure:"server"`
	Projects []project.Project `yaml:"projects,omitempty" mapstructure:"projects"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json
}

// ForecastConfig holds the planning horizon and the annual revenue targets.
type ForecastConfig struct {
	BaseYear       int      `yaml:"baseYear" mapstructure:"baseYear"`
	SupportedYears []int    `yaml:"supportedYears" mapstructure:"supportedYears"`
	Targets        []Target `yaml:"targets,omitempty" mapstructure:"targets"`
}

// Target is the revenue goal for one year.
type Target struct {
	Year   int     `yaml:"year" mapstructure:"year"`
	Amount float64 `yaml:"amount" mapstructure:"amount"`
}

// StorageConfig selects the project store.
type StorageConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // memory, file, postgres
	Path        string `yaml:"path,omitempty" mapstructure:"path"`
	DatabaseURL string `yaml:"databaseURL,omitempty" mapstructure:"databaseURL"`
}

// ServerConfig defines runtime parameters for the HTTP API.
type ServerConfig struct {
	Address      string        `yaml:"address" mapstructure:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout" mapstructure:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout" mapstructure:"writeTimeout"`
	MaxBodySize  string        `yaml:"maxBodySize,omitempty" mapstructure:"maxBodySize"`
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with FORECAST_
// override file values (FORECAST_STORAGE_DRIVER overrides storage.driver).
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationOrDefault is LoadConfiguration, except that a missing
// file at the default location yields the built-in defaults.
func LoadConfigurationOrDefault(configPath string) (*Configuration, error) {
	conf, err := LoadConfiguration(configPath)
	if err != nil && configPath == constants.DefaultConfigFile && errors.Is(err, fs.ErrNotExist) {
		// defaults still take FORECAST_* overrides
		return decode(newViper())
	}
	return conf, err
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// Default returns the built-in configuration. It reads neither files nor
// the environment.
func Default() *Configuration {
	return &Configuration{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Output:  OutputConfig{Format: constants.OutputFormatPretty},
		Forecast: ForecastConfig{
			BaseYear:       constants.BaseYear,
			SupportedYears: defaultSupportedYears(),
		},
		Storage: StorageConfig{
			Driver: constants.StorageMemory,
			Path:   constants.DefaultStorePath,
		},
		Server: ServerConfig{
			Address:      constants.DefaultServerAddress,
			ReadTimeout:  constants.DefaultReadTimeout,
			WriteTimeout: constants.DefaultWriteTimeout,
			MaxBodySize:  strconv.FormatInt(constants.DefaultMaxBodySizeBytes, 10),
		},
	}
}

// newViper registers every key with its built-in default so that FORECAST_*
// variables override keys missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.outputFile", d.Logging.OutputFile)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("forecast.baseYear", d.Forecast.BaseYear)
	v.SetDefault("forecast.supportedYears", d.Forecast.SupportedYears)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.databaseURL", d.Storage.DatabaseURL)
	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.readTimeout", d.Server.ReadTimeout)
	v.SetDefault("server.writeTimeout", d.Server.WriteTimeout)
	v.SetDefault("server.maxBodySize", d.Server.MaxBodySize)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Forecast.SupportedYears = validation.SortedYears(configuration.Forecast.SupportedYears)
	return &configuration, nil
}

func defaultSupportedYears() []int {
	years := make([]int, 0, constants.LastSupportedYear-constants.BaseYear+1)
	for y := constants.BaseYear; y <= constants.LastSupportedYear; y++ {
		years = append(years, y)
	}
	return years
}

// TargetFor returns the revenue target for year, or 0 when none is set.
func (c *Configuration) TargetFor(year int) float64 {
	for _, t := range c.Forecast.Targets {
		if t.Year == year {
			return t.Amount
		}
	}
	return 0
}

// IsSupportedYear reports whether year is within the planning horizon.
func (c *Configuration) IsSupportedYear(year int) bool {
	return validation.ValidateYear(year, c.Forecast.SupportedYears) == nil
}

// StoreOptions converts the storage section into store.Options seeded with
// the configured projects.
func (c *Configuration) StoreOptions() store.Options {
	return store.Options{
		Driver:      c.Storage.Driver,
		Path:        c.Storage.Path,
		DatabaseURL: c.Storage.DatabaseURL,
		Seed:        c.Projects,
	}
}

// MaxBodySizeBytes returns the request body cap in bytes, falling back to
// the default when unset or invalid.
func (c *Configuration) MaxBodySizeBytes() int64 {
	size, err := ParseSize(c.Server.MaxBodySize)
	if err != nil || size <= 0 {
		return constants.DefaultMaxBodySizeBytes
	}
	return size
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	targets := make([]validation.TargetInfo, 0, len(c.Forecast.Targets))
	for _, t := range c.Forecast.Targets {
		targets = append(targets, validation.TargetInfo{Year: t.Year, Amount: t.Amount})
	}
	validator := validation.ForecastValidator{
		BaseYear:       c.Forecast.BaseYear,
		SupportedYears: c.Forecast.SupportedYears,
		Targets:        targets,
	}
	warnings := validator.ValidateAll()

	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		warnings = append(warnings, fmt.Sprintf("Output format: %v", err))
	}
	if err := validation.ValidateLogLevel(c.Logging.Level); err != nil {
		warnings = append(warnings, fmt.Sprintf("Logging: %v", err))
	}

	switch c.Storage.Driver {
	case constants.StorageMemory, constants.StorageFile:
	case constants.StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			warnings = append(warnings, "Storage driver postgres requires storage.databaseURL")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown storage driver %q", c.Storage.Driver))
	}

	if _, err := ParseSize(c.Server.MaxBodySize); err != nil {
		warnings = append(warnings, fmt.Sprintf("Server max body size: %v; using default", err))
	}

	seen := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		label := p.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}
		normalized := project.Normalize(p)
		if err := project.Validate(normalized); err != nil {
			warnings = append(warnings, fmt.Sprintf("Seed project '%s' is invalid and will be skipped: %v", label, err))
			continue
		}
		if !c.overlapsSupportedYears(normalized) {
			first, last := forecast.ActiveYears(normalized)
			warnings = append(warnings, fmt.Sprintf("Seed project '%s' runs %d-%d, outside every supported year", label, first, last))
		}
		for _, w := range project.Warnings(p) {
			warnings = append(warnings, fmt.Sprintf("Seed project '%s': %s", label, w))
		}
		if p.ID == "" {
			continue
		}
		if seen[p.ID] {
			warnings = append(warnings, fmt.Sprintf("Seed project id '%s' is used more than once, later entries will be skipped", p.ID))
		}
		seen[p.ID] = true
	}

	return warnings
}

func (c *Configuration) overlapsSupportedYears(p project.Project) bool {
	first, last := forecast.ActiveYears(p)
	for _, year := range c.Forecast.SupportedYears {
		if year >= first && year <= last {
			return true
		}
	}
	return false
}

// ParseSize converts a human-friendly byte string (e.g., "256K", "10M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxBodySizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
