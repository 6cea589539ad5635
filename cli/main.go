package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gocircum/mimictls/core/clienthello"
	"github.com/gocircum/mimictls/core/config"
	"github.com/gocircum/mimictls/core/domain"
	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/pkg/logging"
)

func main() {
	// Manually parse global flags for logging, as they are needed before subcommands.
	var logLevel, logFormat string
	fs := flag.NewFlagSet("global", flag.ContinueOnError)
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&logFormat, "log-format", "console", "Log format (console, json)")
	// Ignore errors, we'll just use defaults if flags are not there.
	_ = fs.Parse(os.Args[1:])

	logging.InitLogger(logLevel, logFormat, nil)

	args := fs.Args()
	if len(args) < 1 {
		logging.GetLogger().Error("expected 'hello', 'profiles' or 'check' subcommands")
		os.Exit(1)
	}

	switch args[0] {
	case "hello":
		helloCmd := flag.NewFlagSet("hello", flag.ExitOnError)
		domainName := helloCmd.String("domain", "example.com", "Hostname to place in the SNI extension.")
		modeName := helloCmd.String("mode", "browser_https", "Mimic mode (browser_https, video_conference, streaming, generic_tls, mobile_app).")
		if err := helloCmd.Parse(args[1:]); err != nil {
			logging.GetLogger().Error("Failed to parse hello flags", "error", err)
			os.Exit(1)
		}
		runHello(*domainName, *modeName)

	case "profiles":
		runProfiles()

	case "check":
		checkCmd := flag.NewFlagSet("check", flag.ExitOnError)
		configFile := checkCmd.String("config", "mimictls.yaml", "Path to the configuration YAML file.")
		if err := checkCmd.Parse(args[1:]); err != nil {
			logging.GetLogger().Error("Failed to parse check flags", "error", err)
			os.Exit(1)
		}
		runCheck(*configFile)

	default:
		logging.GetLogger().Error("expected 'hello', 'profiles' or 'check' subcommands", "command", args[0])
		os.Exit(1)
	}
}

// runHello encodes a ClientHello for the given domain and mode and dumps
// it as hex, so the traffic shape can be inspected with external tools.
func runHello(domainName, modeName string) {
	logger := logging.GetLogger()

	mode := fingerprint.ModeFromString(modeName)
	tpl := fingerprint.TemplateFor(mode)
	logger.Info("Encoding client hello",
		"domain", domainName, "mode", mode.String(), "template", tpl.Name)

	out, err := clienthello.New().Encode(tpl, domainName)
	if err != nil {
		logger.Error("Failed to encode client hello", "error", err)
		os.Exit(1)
	}

	fmt.Printf("template: %s\nbytes: %d\n\n%s\n", tpl.Name, len(out), hex.Dump(out))
}

// runProfiles prints the builtin template catalog.
func runProfiles() {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tTLS\tCIPHERS\tEXTENSIONS\tALPN\tGREASE")
	for _, name := range fingerprint.Names() {
		tpl, _ := fingerprint.TemplateByName(name)
		fmt.Fprintf(w, "%s\t%#04x\t%d\t%d\t%s\t%v\n",
			tpl.Name, tpl.TLSVersion, len(tpl.CipherSuites), len(tpl.ExtensionOrder),
			tpl.FirstALPN(), tpl.GREASESupport)
	}
	_ = w.Flush()
}

// runCheck loads and validates a configuration file, then registers its
// domains the way an embedding proxy would.
func runCheck(configFile string) {
	logger := logging.GetLogger()

	cfg, err := config.LoadFileConfig(configFile)
	if err != nil {
		logger.Error("Configuration is invalid", "error", err)
		os.Exit(1)
	}

	registry := domain.NewRegistry(domain.WithLogger(logger))
	for _, d := range cfg.Domains {
		mode := fingerprint.ModeFromString(d.Mode)
		if d.Timing != nil {
			registry.RegisterWithTiming(d.Domain, mode, *d.Timing)
		} else {
			registry.Register(d.Domain, mode)
		}
	}

	logger.Info("Configuration is valid", "domains", registry.Len())
}
