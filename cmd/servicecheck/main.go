// Package main provides the servicecheck command line application.
// It drives an address-autocomplete coverage check against a live
// page: open the site, type an address, pick the matching suggestion
// and read back the confirmation text, reporting the exact terminal
// state of each run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coveragekit/servicecheck/pkg/browser"
	"github.com/coveragekit/servicecheck/pkg/config"
	"github.com/coveragekit/servicecheck/pkg/expect"
	"github.com/coveragekit/servicecheck/pkg/flow"
	"github.com/coveragekit/servicecheck/pkg/logging"
)

const version = "0.1.0" // Version of the servicecheck tool

// Config holds the application configuration
type Config struct {
	URL            string
	Address        string
	FallbackAnchor string
	ConfigPath     string
	DatasetPath    string
	Expect         string
	Match          string
	Headed         bool
	ShowVersion    bool
}

func main() {
	// Parse command line flags
	cliCfg := parseFlags()

	// Show version if requested
	if cliCfg.ShowVersion {
		fmt.Printf("servicecheck v%s\n", version)
		return
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		cancel()
	}()

	if err := run(ctx, cliCfg); err != nil {
		fmt.Fprintf(os.Stderr, "servicecheck: %v\n", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags() *Config {
	cliCfg := &Config{}

	flag.StringVar(&cliCfg.URL, "url", "", "Page with the address autocomplete (or set SERVICECHECK_URL)")
	flag.StringVar(&cliCfg.Address, "address", "", "Address to search for (or set SERVICECHECK_ADDRESS)")
	flag.StringVar(&cliCfg.FallbackAnchor, "anchor", "", "Partial-text anchor used when no suggestion matches exactly")
	flag.StringVar(&cliCfg.ConfigPath, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&cliCfg.DatasetPath, "addresses", "", "Path to a YAML dataset of address cases")
	flag.StringVar(&cliCfg.Expect, "expect", "", "Comma-separated substrings the outcome text must contain")
	flag.StringVar(&cliCfg.Match, "match", "", "Comma-separated glob patterns the outcome text must match")
	flag.BoolVar(&cliCfg.Headed, "headed", false, "Run the browser with a visible window")
	flag.BoolVar(&cliCfg.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "servicecheck - address autocomplete coverage checker\n\n")
		fmt.Fprintf(os.Stderr, "Usage: servicecheck [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SERVICECHECK_URL              Target page URL\n")
		fmt.Fprintf(os.Stderr, "  SERVICECHECK_ADDRESS          Address to search for\n")
		fmt.Fprintf(os.Stderr, "  SERVICECHECK_FALLBACK_ANCHOR  Partial-text anchor\n")
		fmt.Fprintf(os.Stderr, "  SERVICECHECK_HEADLESS         Set to false for a visible browser\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  servicecheck -url https://example.com/coverage -address \"12 Example St\"\n")
		fmt.Fprintf(os.Stderr, "  servicecheck -config check.yaml -addresses addresses.yaml\n")
		fmt.Fprintf(os.Stderr, "  servicecheck -url https://example.com -address \"12 Example St\" -expect \"provide services\"\n")
		fmt.Fprintf(os.Stderr, "  servicecheck -url https://example.com -address \"12 Example St\" -match \"*in your area*\"\n")
	}

	flag.Parse()
	return cliCfg
}

// run executes the main application logic
func run(ctx context.Context, cliCfg *Config) error {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}

	// Flags win over file and environment values.
	if cliCfg.URL != "" {
		cfg.URL = cliCfg.URL
	}
	if cliCfg.Address != "" {
		cfg.Address = cliCfg.Address
	}
	if cliCfg.FallbackAnchor != "" {
		cfg.FallbackAnchor = cliCfg.FallbackAnchor
	}
	if cliCfg.Headed {
		cfg.Headless = false
	}

	if cfg.URL == "" {
		return fmt.Errorf("a target URL is required (use -url, a config file, or SERVICECHECK_URL)")
	}

	cases, err := buildCases(cliCfg, cfg)
	if err != nil {
		return err
	}

	log, err := logging.NewLogger("cli")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()
	log.Infof("servicecheck v%s starting, %d case(s) against %s", version, len(cases), cfg.URL)

	manager := browser.NewManager(log)
	if err := manager.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize browser: %w", err)
	}
	defer manager.Shutdown()

	failed := 0
	for _, c := range cases {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := runCase(ctx, manager, cfg, c, log); err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", c.Label(), err)
			log.Errorf("case %q failed: %v", c.Label(), err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d case(s) failed (log: %s)", failed, len(cases), log.LogPath())
	}
	fmt.Printf("All %d case(s) passed.\n", len(cases))
	return nil
}

// buildCases assembles the list of runs: either the dataset file, or a
// single case from the effective address.
func buildCases(cliCfg *Config, cfg config.Config) ([]config.Case, error) {
	if cliCfg.DatasetPath != "" {
		ds, err := config.LoadDataset(cliCfg.DatasetPath)
		if err != nil {
			return nil, err
		}
		return ds.Cases, nil
	}

	if cfg.Address == "" {
		return nil, fmt.Errorf("an address is required (use -address, -addresses, a config file, or SERVICECHECK_ADDRESS)")
	}
	return []config.Case{{
		Address: cfg.Address,
		Expect:  splitList(cliCfg.Expect),
		Match:   splitList(cliCfg.Match),
	}}, nil
}

// runCase performs one full flow invocation in a fresh browser session
// and checks the case's outcome expectations.
func runCase(ctx context.Context, manager *browser.Manager, cfg config.Config, c config.Case, log *logging.Logger) error {
	session, err := manager.NewSession(browser.SessionOptions{
		Headless: cfg.Headless,
	})
	if err != nil {
		return fmt.Errorf("failed to open browser session: %w", err)
	}
	defer manager.CloseSession(session)

	opts := cfg.FlowOptions(c.Address)
	if c.FallbackAnchor != "" {
		opts.FallbackAnchor = c.FallbackAnchor
	}

	f, err := flow.New(opts, log)
	if err != nil {
		return err
	}

	result, err := f.Run(ctx, session)
	if err != nil {
		return err
	}

	if result.NavigationTimedOut {
		fmt.Printf("WARN  %s: navigation timed out, page may be partially loaded\n", c.Label())
	}

	if len(c.Expect) > 0 {
		if err := expect.Contains(result.Outcome, c.Expect...); err != nil {
			return err
		}
	}
	if len(c.Match) > 0 {
		if err := expect.Match(result.Outcome, c.Match...); err != nil {
			return err
		}
	}

	fmt.Printf("PASS  %s: %s match, outcome %q\n", c.Label(), result.Match, result.Outcome)
	return nil
}

// splitList turns a comma-separated flag value into a trimmed list.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
