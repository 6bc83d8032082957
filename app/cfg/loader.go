package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Required paths
	FeedsFile    string `short:"f" long:"feeds" env:"FEEDS_FILE" description:"Path to YAML or OPML file listing feed sources (required)" required:"true"`
	DatabasePath string `short:"d" long:"database" env:"DATABASE_PATH" description:"Path to SQLite database file (required)" required:"true"`
	TemplatesDir string `short:"t" long:"templates" env:"TEMPLATES_DIR" description:"Directory containing HTML templates (required)" required:"true"`
	OutputDir    string `short:"o" long:"output" env:"OUTPUT_DIR" description:"Directory to write generated pages into (required)" required:"true"`

	// Batch run configuration
	WorkerCount    int  `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of concurrent feed fetch workers"`
	Timeout        int  `long:"timeout" env:"FETCH_TIMEOUT" default:"30" description:"Per-source fetch timeout in seconds"`
	LatestCount    int  `long:"latest-count" env:"LATEST_COUNT" default:"100" description:"Number of entries on the latest page"`
	ExtractContent bool `long:"extract-content" env:"EXTRACT_CONTENT" description:"Fetch and extract page content for entries with an empty body"`

	// Preview server configuration
	Serve bool   `long:"serve" env:"SERVE" description:"Keep running after the batch and serve the generated site"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"Preview server port"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"RSS Planet/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for page windows and rendered dates (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Timestamps are stored in UTC; the configured timezone is applied only
	// when computing page windows and rendering dates.
	location, err := time.LoadLocation(raw.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", raw.Timezone, err)
	}

	cfg := &Cfg{
		FeedsFile:      raw.FeedsFile,
		DatabasePath:   raw.DatabasePath,
		TemplatesDir:   raw.TemplatesDir,
		OutputDir:      raw.OutputDir,
		WorkerCount:    raw.WorkerCount,
		Timeout:        raw.Timeout,
		LatestCount:    raw.LatestCount,
		ExtractContent: raw.ExtractContent,
		Serve:          raw.Serve,
		Port:           raw.Port,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Location:       location,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func (c *Cfg) GetTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
