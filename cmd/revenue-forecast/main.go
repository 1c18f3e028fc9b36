package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/iwvelando/revenue-forecast/internal/config"
	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/logging"
	"github.com/iwvelando/revenue-forecast/internal/store"
	"github.com/iwvelando/revenue-forecast/pkg/constants"
	"github.com/iwvelando/revenue-forecast/pkg/output"
	"github.com/iwvelando/revenue-forecast/pkg/validation"
)

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	yearFlag := flag.Int("year", 0, "forecast year (defaults to the configured base year)")
	groupByFlag := flag.String("group-by", "", "grid grouping: segment, type, flat")
	typeFlag := flag.String("type", "all", "project type filter: backlog, pipeline, product, all")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	csvSheet := flag.String("csv-sheet", "year", "csv export sheet: year, projects")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// .env is optional
	_ = godotenv.Load()

	conf, err := config.LoadConfigurationOrDefault(*configLocation)
	if err != nil {
		logging.Fatal("failed to load configuration at "+*configLocation, err)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		logging.Fatal("failed to initialize logger", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	year := conf.Forecast.BaseYear
	if *yearFlag != 0 {
		year = *yearFlag
	}
	if err := validation.ValidateYear(year, conf.Forecast.SupportedYears); err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	groupBy, err := forecast.ParseGroupBy(*groupByFlag)
	if err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}
	typ, err := forecast.ParseTypeFilter(*typeFlag)
	if err != nil {
		logger.Fatal(err.Error(), zap.String("op", "main"))
	}

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ctx := context.Background()
	repo, closeStore, err := store.Open(ctx, conf.StoreOptions(), logger)
	if err != nil {
		logger.Fatal("failed to open project store",
			zap.String("op", "main"),
			zap.String("driver", conf.Storage.Driver),
			zap.Error(err),
		)
	}
	defer closeStore()

	projects, err := repo.List(ctx)
	if err != nil {
		logger.Fatal("failed to list projects",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Debug("loaded projects",
		zap.String("op", "main"),
		zap.Int("projects", len(projects)),
		zap.Int("year", year),
	)

	switch outputFormat {
	case constants.OutputFormatCSV:
		if *csvSheet == "projects" {
			err = output.WriteProjectsCSV(os.Stdout, projects)
		} else {
			err = output.WriteYearCSV(os.Stdout, projects, year)
		}
	default:
		report := output.Report{
			Year:      year,
			GroupBy:   groupBy,
			Grid:      forecast.BuildGrid(projects, forecast.GridOptions{Type: typ, GroupBy: groupBy, Year: year}),
			Scenarios: forecast.BuildScenarios(projects, year),
			Summary:   forecast.Summarize(projects, year, conf.TargetFor(year)),
			Funnel:    forecast.Funnel(projects),
			Top:       forecast.TopOpportunities(projects, constants.DefaultTopOpportunities),
			Warnings:  warnings,
		}
		if outputFormat == constants.OutputFormatJSON {
			err = output.JSONFormat(os.Stdout, report)
		} else {
			output.PrettyFormat(os.Stdout, report)
		}
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
