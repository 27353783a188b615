package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/pipeline"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/internal/telemetry"
	"github.com/RostislavKrotenko/cybersecurity-smartenergy/pkg/common"
)

const envPrefix = "SEA"

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "SmartEnergy Analyzer - light SIEM: detect, correlate, report",
	Long: `SmartEnergy Analyzer ingests normalized security/operational events
(CSV or JSONL), detects threats through configurable rules, groups alerts
into incidents and computes resilience metrics (availability, MTTD, MTTR,
downtime) under competing security-policy configurations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("input", "data/events.csv", "input file (CSV or JSONL, format by extension)")
	flags.String("out-dir", "out", "output directory")
	flags.String("policies", "all", "comma-separated policy names, or 'all'")
	flags.String("config-dir", "config", "directory with rules.yaml and policies.yaml")
	flags.Float64("horizon-days", 0, "analysis horizon in days (0 = derive from input span)")
	flags.Int64("seed", 0, "random seed (reserved for stochastic response simulation)")
	flags.Bool("watch", false, "tail the input JSONL and re-analyse on new data")
	flags.Int("poll-interval-ms", 1000, "watch mode poll interval in milliseconds")
	flags.String("metrics-addr", "", "serve Prometheus metrics at this address in watch mode (e.g. :9090)")
	flags.String("log-level", "info", "logging level (debug, info, warn, error)")
	flags.String("log-file", "logs/analyzer.log", "log file path (empty disables the file sink)")

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlags(flags)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return err
	}
	return nil
}

func run(cmd *cobra.Command, args []string) error {
	logCfg := common.NewLogConfig()
	logCfg.Level = viper.GetString("log-level")
	logCfg.OutputPath = viper.GetString("log-file")
	if err := common.InitLogger(logCfg); err != nil {
		return err
	}
	defer common.Sync()

	if seed := viper.GetInt64("seed"); seed != 0 {
		common.Debug("seed accepted (reserved)", zap.Int64("seed", seed))
	}

	opts := pipeline.Options{
		InputPath:   viper.GetString("input"),
		OutDir:      viper.GetString("out-dir"),
		Policies:    splitPolicies(viper.GetString("policies")),
		ConfigDir:   viper.GetString("config-dir"),
		HorizonDays: viper.GetFloat64("horizon-days"),
	}

	if viper.GetBool("watch") {
		return runWatch(opts)
	}

	result, err := pipeline.Run(opts)
	if err != nil {
		common.Error("analysis failed", err)
		return err
	}

	printSummary(result)
	return nil
}

func runWatch(opts pipeline.Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := viper.GetString("metrics-addr"); addr != "" {
		go serveMetrics(ctx, addr)
	}

	poll := time.Duration(viper.GetInt("poll-interval-ms")) * time.Millisecond
	fmt.Printf("Analyzer watch mode -> %s\n", opts.InputPath)
	fmt.Printf("  poll interval: %s, policies: %s\n", poll, strings.Join(opts.Policies, ", "))
	fmt.Println("  Press Ctrl+C to stop.")

	if err := pipeline.Watch(ctx, opts, poll); err != nil {
		common.Error("watch failed", err)
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	common.Info("metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		common.Error("metrics endpoint failed", err)
	}
}

func splitPolicies(raw string) []string {
	if raw == "" || raw == "all" {
		return []string{"all"}
	}
	parts := strings.Split(raw, ",")
	policies := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			policies = append(policies, trimmed)
		}
	}
	return policies
}

func printSummary(result *pipeline.Result) {
	if len(result.Metrics) == 0 {
		fmt.Println("No policies analysed.")
		return
	}

	best := result.Metrics[0]
	for _, m := range result.Metrics[1:] {
		if m.AvailabilityPct > best.AvailabilityPct {
			best = m
		}
	}

	fmt.Println()
	for _, m := range result.Metrics {
		line := fmt.Sprintf("  %-12s availability=%6.2f%%  downtime=%.4f hr  incidents=%d",
			m.Policy, m.AvailabilityPct, m.TotalDowntimeHr, m.IncidentsTotal)
		switch {
		case m.Policy == best.Policy:
			color.Green(line)
		case m.AvailabilityPct < 95:
			color.Red(line)
		default:
			fmt.Println(line)
		}
	}

	if len(result.Ranking) > 0 {
		top := result.Ranking[0]
		fmt.Printf("\nMost effective control set: %s (effectiveness %.3f)\n",
			top.Policy, top.Effectiveness)
	}
}
