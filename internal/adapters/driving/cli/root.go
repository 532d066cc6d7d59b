// Package cli implements the saturday-night command line.
package cli

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

var version = "dev"

// Options carries the global flags to the bootstrap function.
type Options struct {
	ConfigDir string
	Version   string
}

// Services are the driving ports the commands use.
type Services struct {
	Dispatcher  driving.Dispatcher
	Interpreter driving.Interpreter
	Settings    driving.SettingsService

	// Watch blocks, applying config file changes until ctx is done. Optional.
	Watch func(ctx context.Context) error

	// Close releases backend connections. Optional.
	Close func() error
}

// BootstrapFunc builds the services once the global flags are parsed.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	configDir string
	verbose   bool
	logFormat string
	envFile   string

	bootstrap    BootstrapFunc
	services     *Services
	bootstrapped bool
)

var rootCmd = &cobra.Command{
	Use:   "saturday-night",
	Short: "Natural-language queries over spreadsheets and invoices",
	Long: `saturday-night answers plain-language questions about a Google Sheets
spreadsheet and a QuickBooks invoice ledger.

It runs as an MCP tool server for AI assistants, or answers one-off
queries from the command line.`,
	SilenceUsage:      true,
	PersistentPreRunE: preRun,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return closeServices()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.saturday-night)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading configuration")
}

// SetVersion sets the version reported by the version command and the server.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetBootstrap installs the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs prebuilt services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// Execute runs the root command. Cancelling ctx stops a running server.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func preRun(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if logFormat != "" {
		logger.SetFormat(logFormat)
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// requireServices builds the services on first use so that commands such as
// version never touch configuration or backends.
func requireServices(cmd *cobra.Command) (*Services, error) {
	if services != nil {
		return services, nil
	}
	if bootstrap == nil {
		return nil, errors.New("services not configured")
	}

	s, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, Version: version})
	if err != nil {
		return nil, err
	}
	services = s
	bootstrapped = true

	if logFormat == "" && s.Settings != nil {
		if settings, err := s.Settings.Get(); err == nil {
			logger.SetFormat(settings.Log.Format)
		}
	}
	return services, nil
}

func closeServices() error {
	if !bootstrapped {
		return nil
	}
	bootstrapped = false
	s := services
	services = nil
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close()
}

// stdoutIsTerminal reports whether cmd writes to an interactive terminal.
func stdoutIsTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && isTerminal(int(f.Fd()))
}
