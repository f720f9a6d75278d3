// Command mpinger concurrently probes a set of destinations over ICMP,
// TCP connect, HTTP keep-alive, or UDP, and displays a live per-destination
// result table.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
	uuid "github.com/satori/go.uuid"
	"github.com/spf13/pflag"

	"github.com/pcekm/mpinger/internal/config"
	"github.com/pcekm/mpinger/internal/mpinger"
	_ "github.com/pcekm/mpinger/internal/probe/http"
	_ "github.com/pcekm/mpinger/internal/probe/icmp"
	_ "github.com/pcekm/mpinger/internal/probe/random"
	_ "github.com/pcekm/mpinger/internal/probe/tcp"
	_ "github.com/pcekm/mpinger/internal/probe/udp"
	"github.com/pcekm/mpinger/internal/resultview"
)

var (
	envFile     = pflag.String("env", ".env", "Optional .env file with MPINGER_* overrides.")
	targetsFile = pflag.StringP("targets", "f", "", "Optional YAML file listing destinations (see TargetsFile).")
	count       = pflag.IntP("count", "c", 0, "Number of probes to send per destination. 0 means run until interrupted.")
	verbose     = pflag.BoolP("verbose", "v", false, "Enable debug logging.")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: mpinger [flags] [type:address ...]\n\ntype is one of icmp, tcp, http, udp, random.\n\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	logger := newLogger(*verbose)
	sessionID := uuid.NewV4().String()
	logger = logger.With("session_id", sessionID)

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	targets, err := config.LoadTargets(*targetsFile)
	if err != nil {
		logger.Error("failed to load targets file", "error", err)
		os.Exit(1)
	}
	for _, arg := range pflag.Args() {
		t, err := parseTargetArg(arg)
		if err != nil {
			logger.Error("invalid target argument", "arg", arg, "error", err)
			os.Exit(1)
		}
		targets = append(targets, t)
	}
	if len(targets) == 0 {
		pflag.Usage()
		os.Exit(1)
	}

	engine := mpinger.New(
		mpinger.NewConfig(
			mpinger.WithPingInterval(cfg.PingInterval),
			mpinger.WithTimeout(cfg.Timeout),
			mpinger.WithNextTimeout(cfg.NextTimeout),
			mpinger.WithPingRetries(cfg.PingRetries),
			mpinger.WithDefaultPort(cfg.DefaultPort),
		),
		mpinger.WithLogger(logger),
	)

	labels := make(map[int]struct {
		Address string
		Type    mpinger.Type
	})
	for _, t := range targets {
		ptype, err := config.ParseType(t.Type)
		if err != nil {
			logger.Error("invalid target type", "target", t.Address, "type", t.Type, "error", err)
			os.Exit(1)
		}
		id, err := engine.AddDestination(ptype, t.Address)
		if err != nil {
			logger.Error("failed to add destination", "target", t.Address, "error", err)
			os.Exit(1)
		}
		labels[id] = struct {
			Address string
			Type    mpinger.Type
		}{Address: t.Address, Type: ptype}
	}

	it := engine.Start(*count)
	defer engine.Stop()

	model := resultview.New(it, labels)
	prog := tea.NewProgram(model)
	if _, err := prog.Run(); err != nil {
		logger.Error("display error", "error", err)
		os.Exit(1)
	}
}

// parseTargetArg parses a "type:address" CLI argument. address may itself
// contain a colon (host:port), so only the first colon separates the type
// prefix.
func parseTargetArg(arg string) (config.Target, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return config.Target{}, fmt.Errorf("expected type:address, got %q", arg)
	}
	return config.Target{Type: parts[0], Address: parts[1]}, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339))
			}
			return a
		},
	}))
}
