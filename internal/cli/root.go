package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/netip"
	"strings"

	"github.com/censys-cli/internal/audit"
	"github.com/censys-cli/internal/censys"
	"github.com/censys-cli/internal/config"
	"github.com/censys-cli/internal/logging"
	"github.com/censys-cli/internal/metrics"
	"github.com/censys-cli/internal/output"
	"github.com/censys-cli/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Build info, set via -ldflags at build time
var (
	Version   = "dev"
	CommitID  = "unknown"
	BuildDate = "unknown"
)

const (
	binaryName = "censys-cli"

	// annotationAPI marks commands that call the Censys API
	annotationAPI = "censys-cli/api"
	// annotationAudit marks commands that need the audit store
	annotationAudit = "censys-cli/audit"
)

// app holds the state of a single CLI invocation
type app struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer

	outputFlag string
	noColor    bool
	logLevel   string

	format  output.Format
	metrics *metrics.Metrics
	repo    *audit.Repository
	svc     *service.LookupService
}

// Run executes the CLI with args and returns the process exit code
func Run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	a := &app{
		cfg:     cfg,
		stdout:  stdout,
		stderr:  stderr,
		metrics: metrics.NewMetrics(),
	}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	a.shutdown(ctx)

	return a.exitCode(err)
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   binaryName + " [ip]",
		Short: "Command-line client for the Censys Platform API",
		Long: `censys-cli looks up hosts, runs searches and aggregations against the
Censys Platform API and prints the results.

Credentials are read from CENSYS_PLATFORM_TOKEN and, optionally,
CENSYS_ORGANIZATION_ID.

A bare first argument that is not a command is looked up as a host IP,
so "censys-cli 8.8.8.8" is the same as "censys-cli host 8.8.8.8".`,
		Example: `  censys-cli host 8.8.8.8
  censys-cli 8.8.8.8
  censys-cli search "host.services.port: 22" 10
  censys-cli aggregate "host.services.port: 22" "host.location.country" 10`,
		Args:              usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			a.warnShorthand(cmd, args[0])
			return a.runHost(cmd, args[0])
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	// cobra only defaults this for commands without Args
	root.SuggestionsMinimumDistance = 2
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &UsageError{Cmd: cmd, Err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVarP(&a.outputFlag, "output", "o", a.cfg.App.OutputFormat, "output format: text, json or yaml")
	flags.BoolVar(&a.noColor, "no-color", a.cfg.App.NoColor, "disable styled headings")
	flags.StringVar(&a.logLevel, "log-level", a.cfg.App.LogLevel, "log level: debug, info, warn or error")

	root.AddCommand(
		a.hostCommand(),
		a.searchCommand(),
		a.aggregateCommand(),
		a.historyCommand(),
		a.versionCommand(),
	)
	return root
}

// preRun applies global flags and wires the service for commands that need it
func (a *app) preRun(cmd *cobra.Command, args []string) error {
	format, err := output.ParseFormat(a.outputFlag)
	if err != nil {
		return &UsageError{Cmd: cmd, Err: err}
	}
	a.format = format

	if a.logLevel != "" {
		level, err := logrus.ParseLevel(a.logLevel)
		if err != nil {
			return &UsageError{Cmd: cmd, Err: fmt.Errorf("invalid --log-level: %w", err)}
		}
		logrus.SetLevel(level)
	}

	needsAPI := cmd.Annotations[annotationAPI] == "true" || (!cmd.HasParent() && len(args) > 0)
	needsAudit := cmd.Annotations[annotationAudit] == "true"
	if !needsAPI && !needsAudit {
		return nil
	}

	ctx := logging.WithRequestID(cmd.Context(), logging.GenerateRequestID())
	cmd.SetContext(ctx)

	var api service.API
	if needsAPI {
		if err := a.cfg.RequireCredentials(); err != nil {
			return err
		}
		client, err := censys.NewClient(&censys.ClientConfig{
			BaseURL:        a.cfg.API.BaseURL,
			Token:          a.cfg.API.Token,
			OrganizationID: a.cfg.API.OrganizationID,
			Timeout:        a.cfg.HTTP.Timeout,
			UserAgent:      binaryName + "/" + Version,
			Observer:       a.metrics,
		})
		if err != nil {
			return fmt.Errorf("failed to create Censys client: %w", err)
		}
		api = client
	}

	var store service.AuditStore
	if a.cfg.Audit.Enabled() {
		repo, err := audit.Open(ctx, a.cfg.Audit.Driver, a.cfg.Audit.DSN)
		switch {
		case err != nil && needsAudit:
			return err
		case err != nil:
			logging.FromContext(ctx).WithError(err).Warn("Audit trail unavailable, continuing without it")
		default:
			a.repo = repo
			store = repo
		}
	}

	a.svc = service.NewLookupService(api, store, a.metrics)
	return nil
}

// warnShorthand flags a bare argument that does not look like an IP address,
// since it may be a mistyped command name
func (a *app) warnShorthand(cmd *cobra.Command, arg string) {
	if _, err := netip.ParseAddr(arg); err == nil {
		return
	}

	entry := logging.FromContext(cmd.Context()).WithField("argument", arg)
	if suggestions := cmd.SuggestionsFor(arg); len(suggestions) > 0 {
		entry.Warnf("%q is not a command, treating it as an IP address (did you mean %s?)", arg, strings.Join(suggestions, " or "))
		return
	}
	entry.Warnf("treating %q as an IP address", arg)
}

func (a *app) renderer() *output.Renderer {
	return output.NewRenderer(a.stdout, a.format, !a.noColor)
}

// shutdown pushes metrics and releases the audit store
func (a *app) shutdown(ctx context.Context) {
	if a.cfg.Metrics.Enabled() {
		if err := a.metrics.Push(ctx, a.cfg.Metrics.PushgatewayURL, a.cfg.Metrics.Job); err != nil {
			logrus.WithError(err).Warn("Failed to push metrics")
		}
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close audit database")
		}
	}
}

// exitCode reports err and maps it to the process exit status
func (a *app) exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	fmt.Fprintf(a.stderr, "Error: %s\n", output.SanitizeTerminal(err.Error()))

	var usageErr *UsageError
	var cmdErr *CommandError
	switch {
	case errors.As(err, &usageErr):
		if usageErr.Cmd != nil {
			fmt.Fprintln(a.stderr)
			fmt.Fprint(a.stderr, usageErr.Cmd.UsageString())
		}
		return ExitUsage
	case errors.As(err, &cmdErr):
		return ExitOK
	default:
		return ExitError
	}
}
