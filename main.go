// Package main provides the entry point for mullvadctl.
// mullvadctl drives the Mullvad VPN command-line client: it switches
// relays, waits for the tunnel to come up, and can watch the connection
// and reconnect when it drops.
//
// Usage:
//
//	mullvadctl [options] command [args]
//
// Environment:
//
//	The mullvad client must be installed, or --binary must point at it.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pborman/getopt/v2"
	"golang.org/x/term"

	"github.com/yllada/mullvadctl/cli"
	"github.com/yllada/mullvadctl/common"
	"github.com/yllada/mullvadctl/config"
	"github.com/yllada/mullvadctl/history"
	"github.com/yllada/mullvadctl/notify"
	"github.com/yllada/mullvadctl/vpn"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
// Default values are used for local development builds
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	verbose     = getopt.BoolLong("verbose", 'v', "Enable verbose logging")
	configPath  = getopt.StringLong("config", 0, "", "Configuration file", "FILE")
	binaryPath  = getopt.StringLong("binary", 0, "", "Mullvad client binary", "PATH")
	showVersion = getopt.BoolLong("version", 0, "Show version and exit")
	showHelp    = getopt.BoolLong("help", 'h', "Show help message")
)

func main() {
	getopt.SetParameters("command [args]")
	getopt.Parse()
	args := getopt.Args()

	// Handle help flag
	if *showHelp || (len(args) > 0 && args[0] == "help") {
		cli.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	// Handle version flag
	if *showVersion || (len(args) > 0 && args[0] == "version") {
		printVersion()
		os.Exit(0)
	}

	// Initialize logger; console output stays quiet unless --verbose
	logLevel := common.LevelWarn
	if *verbose {
		logLevel = common.LevelDebug
	}

	interactive := isTerminal(os.Stdout) && isTerminal(os.Stderr)

	if err := common.InitLogger(common.LogConfig{
		Level:       logLevel,
		EnableFile:  true,
		NoColor:     !isTerminal(os.Stderr),
		MaxFileSize: 5 * 1024 * 1024, // 5MB
		MaxBackups:  5,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	code := run(args, interactive)
	common.CloseLogger()
	os.Exit(code)
}

// run loads configuration, wires the controller and executes one command.
// It returns the process exit code.
func run(args []string, interactive bool) int {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *binaryPath != "" {
		cfg.Binary = *binaryPath
	}

	// Verify the client is installed before running anything
	if err := vpn.CheckBinary(cfg.Binary); err != nil {
		common.LogError("Mullvad client not found: %v", err)
		fmt.Fprintf(os.Stderr, "Error: the Mullvad client (%s) is not installed or not on PATH.\n", cfg.Binary)
		return 1
	}

	// Setup graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals (SIGINT, SIGTERM)
	setupSignalHandler(cancel)

	controller := vpn.NewController(vpn.NewExecRunner(cfg.Binary), vpn.ControllerConfig{
		PollInterval: cfg.PollInterval,
		PollAttempts: cfg.PollAttempts,
	})

	app := cli.New(controller, cfg, cli.Options{Interactive: interactive})

	if cfg.Notifications {
		notifier := notify.NewDBusNotifier(common.AppName)
		defer notifier.Close()
		app.SetNotifier(notifier)
	}

	if cfg.History {
		if store := openHistory(); store != nil {
			defer store.Close()
			app.SetHistory(store)
		}
	}

	common.LogDebug("Running %v with %s", args, cfg.Binary)

	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, "Run 'mullvadctl help' for usage.")
		}
		return 1
	}
	return 0
}

// loadConfig reads dotenv files and the configuration file.
func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	if err := config.LoadEnvFiles(".env", filepath.Join(filepath.Dir(path), ".env")); err != nil {
		common.LogWarn("Could not load .env: %v", err)
	}

	return config.Load(path)
}

// openHistory opens the attempt journal. A journal that cannot be opened
// disables history for this run.
func openHistory() *history.Store {
	path, err := history.DefaultPath()
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}

	store, err := history.Open(path)
	if err != nil {
		common.LogWarn("History disabled: %v", err)
		return nil
	}
	return store
}

func printVersion() {
	fmt.Printf("%s %s\n", common.AppName, appVersion)
	if buildTime != "unknown" {
		fmt.Printf("  Build:  %s\n", buildTime)
		fmt.Printf("  Commit: %s\n", commitSHA)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// setupSignalHandler configures graceful shutdown on SIGINT/SIGTERM.
// The first signal cancels the context; connect cannot be cancelled,
// so a second signal exits immediately.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 2)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, shutting down...", sig)
		cancel()

		<-sigChan
		common.CloseLogger()
		os.Exit(130)
	}()
}
