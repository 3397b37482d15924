package main

import (
	"context"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/skillbuilder/skillbuilder/pkg/config"
	"github.com/skillbuilder/skillbuilder/pkg/logger"
	"github.com/skillbuilder/skillbuilder/pkg/ratelimit"
)

// watchRateLimits re-applies the ratelimit rules whenever the config file
// in use changes. It is a no-op when no config file was loaded.
func watchRateLimits(ctx context.Context, v *viper.Viper, general, generate ratelimit.Adjustable) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(event fsnotify.Event) {
		if err := reloadRateLimits(ctx, v, event, general, generate); err != nil {
			logger.G(ctx).WithError(err).WithField("file", event.Name).Warn("keeping previous rate limit rules")
		}
	})
	v.WatchConfig()

	logger.G(ctx).WithField("file", v.ConfigFileUsed()).Debug("watching config file for rate limit changes")
}

// reloadRateLimits validates the reloaded configuration and swaps the
// rules into the running limiters. A backend change needs a restart.
func reloadRateLimits(ctx context.Context, v *viper.Viper, event fsnotify.Event, general, generate ratelimit.Adjustable) error {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return nil
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := logger.G(ctx).WithField("file", event.Name)
	if cfg.RateLimit.Backend != appConfig.RateLimit.Backend {
		log.WithField("backend", cfg.RateLimit.Backend).Warn("rate limit backend changes apply after restart")
	}

	general.SetRule(cfg.RateLimit.General)
	generate.SetRule(cfg.RateLimit.Generate)

	log.WithFields(logrus.Fields{
		"general":  cfg.RateLimit.General.Max,
		"generate": cfg.RateLimit.Generate.Max,
	}).Info("reloaded rate limit rules")
	return nil
}
