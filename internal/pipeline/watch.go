package pipeline

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/ingest"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/telemetry"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/contracts"
)

// Watch tails an append-only JSONL input and re-runs the full analysis on
// the accumulated event list whenever new records appear. Outputs are
// rewritten atomically each iteration. The loop returns only when ctx is
// cancelled; errors inside an iteration are logged and the next tick
// proceeds.
func Watch(ctx context.Context, opts Options, pollInterval time.Duration) error {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	// Configuration problems remain fatal, even in watch mode.
	rulesCfg, policiesCfg, err := loadConfigs(opts.ConfigDir)
	if err != nil {
		return err
	}

	tail := ingest.NewTail(opts.InputPath)
	var accumulated []contracts.Event
	iteration := 0

	// Pre-load whatever the file already contains before the first tick.
	if preloaded, err := tail.ReadNew(); err != nil {
		common.Error("watch preload failed", err)
	} else if len(preloaded) > 0 {
		accumulated = append(accumulated, preloaded...)
		common.Info("watch pre-loaded events",
			zap.Int("events", len(accumulated)),
			zap.Int64("offset", tail.Offset()),
		)
	}

	common.Info("watch mode started",
		zap.String("input", opts.InputPath),
		zap.Duration("poll_interval", pollInterval),
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			common.Info("watch stopped", zap.Int("events_total", len(accumulated)))
			return nil
		case <-ticker.C:
		}

		fresh, err := tail.ReadNew()
		if err != nil {
			common.Error("watch read failed", err)
			continue
		}
		if len(fresh) == 0 {
			continue
		}

		accumulated = append(accumulated, fresh...)
		iteration++
		telemetry.CountWatchIteration()
		common.Info("watch iteration",
			zap.Int("iteration", iteration),
			zap.Int("new_events", len(fresh)),
			zap.Int("total_events", len(accumulated)),
		)

		result := analyze(accumulated, rulesCfg, policiesCfg, opts)
		if err := writeOutputs(opts.OutDir, result); err != nil {
			common.Error("watch output write failed", err)
		}
	}
}
