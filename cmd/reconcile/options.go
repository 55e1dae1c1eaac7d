package main

import (
	"time"

	"github.com/wekeepgrowing/uxpilot-billing/pkg/config"
)

const envPrefix = "reconcile"

type options struct {
	DryRun  bool
	Timeout time.Duration
}

// loadOptions merges defaults, the optional yaml file and RECONCILE_* env vars.
func loadOptions(file string) (options, error) {
	cfg, err := config.Load(config.Options{
		EnvPrefix: envPrefix,
		File:      file,
		Defaults: map[string]interface{}{
			"dry_run": false,
			"timeout": "10m",
		},
	})
	if err != nil {
		return options{}, err
	}

	return options{
		DryRun:  cfg.GetBool("dry_run"),
		Timeout: cfg.GetDuration("timeout"),
	}, nil
}
