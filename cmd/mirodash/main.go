package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"mirodash/internal/config"
	"mirodash/internal/render"
	"mirodash/internal/schedule"
	"mirodash/internal/state"
	"mirodash/internal/telemetry"
	"mirodash/internal/ui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgPath string
		listen  string
		source  string
	)
	cmd := &cobra.Command{
		Use:           "mirodash",
		Short:         "Live dashboard of a MiRo robot's action selection, affect, motivation and vision",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, "config:", err)
				return err
			}
			if listen != "" {
				cfg.Listen = listen
			}
			if source != "" {
				cfg.Source = source
				if err := cfg.Validate(); err != nil {
					fmt.Fprintln(os.Stderr, "config:", err)
					return err
				}
			}
			level, _ := cfg.SlogLevel()
			log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
			}))
			if err := serve(cmd.Context(), cfg, log); err != nil {
				log.Error("dashboard stopped", "error", err)
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "YAML or TOML config file")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address, overrides config")
	cmd.Flags().StringVar(&source, "source", "", "telemetry source: mqtt or sim")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "mirodash", version)
		},
	})
	return cmd
}

func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	db, err := state.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	spawn := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
				cancel()
			}
		}()
	}

	var src telemetry.Source
	switch cfg.Source {
	case "mqtt":
		m := telemetry.NewMQTTSource(telemetry.MQTTConfig{
			Broker:      cfg.MQTT.Broker,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			KeepAlive:   cfg.MQTT.KeepAlive.D(),
		}, telemetry.NewCache(cfg.TelemetryTTL.D()), log)
		spawn("mqtt", m.Run)
		src = m
	default:
		src = telemetry.NewSimSource(len(cfg.Actions), len(cfg.Drives), time.Now)
	}

	p := render.New(render.Config{
		AssetPrefix:    cfg.AssetPrefix,
		Actions:        cfg.Actions,
		Drives:         cfg.Drives,
		WindowCapacity: cfg.WindowCapacity,
		CamScale:       cfg.CamScale,
		CamScaleLarge:  cfg.CamScaleLarge,
	}, log)

	srv := ui.New(cfg.Listen, cfg.AssetDir, log)
	runner := schedule.NewRunner(p, src, srv, schedule.Intervals{
		Fast:   cfg.Intervals.Fast.D(),
		Medium: cfg.Intervals.Medium.D(),
		Slow:   cfg.Intervals.Slow.D(),
	}, log)

	toggles, err := db.LoadToggles()
	if err != nil {
		log.Warn("could not restore overlay toggles", "error", err)
	}
	runner.SetToggles(toggles)

	srv.Latest = runner.Latest
	srv.Toggles = runner.Toggles
	srv.SetToggles = func(t render.Toggles) error {
		runner.SetToggles(t)
		return db.SaveToggles(t)
	}
	srv.History = db.Samples

	rec := state.NewRecorder(db, src, cfg.Drives, cfg.Intervals.Record.D(), cfg.HistoryRetention.D(), log)

	log.Info("mirodash starting", "version", version, "source", cfg.Source, "listen", cfg.Listen)
	spawn("schedule", runner.Run)
	spawn("recorder", rec.Run)
	spawn("ui", srv.Run)

	wg.Wait()
	log.Info("mirodash stopped",
		"dropped_fast", runner.Dropped(schedule.Fast),
		"dropped_medium", runner.Dropped(schedule.Medium),
		"dropped_slow", runner.Dropped(schedule.Slow))
	return errors.Join(errs...)
}
