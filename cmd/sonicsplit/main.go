package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"

	"sonicsplit/engine"
	"sonicsplit/resolver"
	"sonicsplit/settings"
	"sonicsplit/timer"
	"sonicsplit/timer/livesplit"
)

// options are read from the environment first; flags override them.
type options struct {
	Config    string        `env:"SONICSPLIT_CONFIG"`
	LiveSplit string        `env:"SONICSPLIT_LIVESPLIT" envDefault:"localhost:16834"`
	Transport string        `env:"SONICSPLIT_TRANSPORT" envDefault:"tcp"`
	Tick      time.Duration `env:"SONICSPLIT_TICK" envDefault:"16ms"`
	DryRun    bool          `env:"SONICSPLIT_DRY_RUN"`
}

func main() {
	var opts options
	if err := env.Parse(&opts); err != nil {
		fmt.Printf("Error reading environment: %v\n", err)
		os.Exit(1)
	}

	configFlag := flag.String("config", opts.Config, "YAML file with split toggles")
	livesplitFlag := flag.String("livesplit", opts.LiveSplit, "LiveSplit server address (host:port, or ws:// URL for -transport ws)")
	transportFlag := flag.String("transport", opts.Transport, "Timer transport: tcp or ws")
	tickFlag := flag.Duration("tick", opts.Tick, "Polling interval")
	dryRunFlag := flag.Bool("dry-run", opts.DryRun, "Log decisions against an in-memory timer instead of LiveSplit")
	listFlag := flag.Bool("list-settings", false, "Print the split toggles and exit")
	printFlag := flag.Bool("print-config", false, "Print the effective toggles as a YAML settings file and exit")
	flag.Parse()

	store, err := settings.NewStore(*configFlag)
	if err != nil {
		fmt.Printf("Error loading settings: %v\n", err)
		os.Exit(1)
	}

	if *listFlag {
		listSettings(store.Snapshot())
		return
	}
	if *printFlag {
		out, err := store.Snapshot().YAML()
		if err != nil {
			fmt.Printf("Error encoding settings: %v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(out)
		return
	}

	if *tickFlag <= 0 {
		fmt.Println("Error: --tick must be positive")
		flag.Usage()
		os.Exit(1)
	}

	tm, closeTimer, err := openTimer(*transportFlag, *livesplitFlag, *dryRunFlag)
	if err != nil {
		fmt.Printf("Error setting up timer: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	defer closeTimer()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := engine.New(engine.Config{
		Attacher: newAttacher(),
		Timer:    tm,
		Settings: store,
		Resolver: resolver.New(nil),
	})

	fmt.Printf("Waiting for the game, polling every %s\n", *tickFlag)
	if err := e.Run(ctx, *tickFlag); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func openTimer(transport, addr string, dryRun bool) (timer.Timer, func(), error) {
	if dryRun {
		return timer.NewRecorder(0), func() {}, nil
	}

	switch transport {
	case "tcp":
		c := livesplit.NewTCP(addr)
		return c, func() { c.Close() }, nil
	case "ws":
		c, err := livesplit.NewWebsocket(addr)
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown transport %q", transport)
	}
}

func listSettings(s settings.Settings) {
	for _, d := range settings.Descriptors {
		fmt.Printf("%-20s %-5t %s\n", d.Key, s.Enabled(d.Toggle), d.Label)
	}
}
