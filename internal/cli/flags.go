package cli

import (
	"flag"

	appsync "github.com/Nowaker/monarch-amazon-sync/internal/application/sync"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
)

// SyncFlags are common flags for all sync commands
type SyncFlags struct {
	Provider   string
	Year       int
	MaxPages   int
	ConfigPath string
	Verbose    bool
	NoProgress bool
}

// ParseSyncFlags parses common sync flags from command line
func ParseSyncFlags() SyncFlags {
	var flags SyncFlags
	flag.StringVar(&flags.Provider, "provider", "amazon", "Provider to sync (amazon, costco, walmart)")
	flag.IntVar(&flags.Year, "year", 0, "Order-history year to scan (0 = provider default view)")
	flag.IntVar(&flags.MaxPages, "max-pages", 0, "Maximum listing pages to scan (0 = all)")
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")
	flag.BoolVar(&flags.NoProgress, "no-progress", false, "Disable the progress bar")
	flag.Parse()
	return flags
}

// ResolveOptions merges flag values with the per-provider config
// defaults; an explicit flag wins. The progress callback is attached
// by the caller.
func (f SyncFlags) ResolveOptions(cfg *config.Config) appsync.Options {
	opts := appsync.Options{
		Year:     f.Year,
		MaxPages: f.MaxPages,
	}

	switch f.Provider {
	case "amazon":
		if opts.Year == 0 {
			opts.Year = cfg.Providers.Amazon.Year
		}
		if opts.MaxPages == 0 {
			opts.MaxPages = cfg.Providers.Amazon.MaxPages
		}
	case "costco":
		if opts.Year == 0 {
			opts.Year = cfg.Providers.Costco.Year
		}
	case "walmart":
		if opts.Year == 0 {
			opts.Year = cfg.Providers.Walmart.Year
		}
	}

	return opts
}
