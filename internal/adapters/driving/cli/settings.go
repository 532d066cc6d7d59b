package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure default sources, the cache backend and credentials.

Use subcommands to change a single setting or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure sources, cache and credentials step by step.`,
	RunE:  runSettingsWizard,
}

var settingsCacheCmd = &cobra.Command{
	Use:   "cache [backend]",
	Short: "Set the cache backend",
	Long: `Set where memoized datasets are kept.

Available backends:
  memory - per process (default)
  sqlite - local file, survives restarts
  redis  - shared between processes
  none   - disable memoization`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsCache,
}

var settingsSpreadsheetCmd = &cobra.Command{
	Use:   "spreadsheet [id]",
	Short: "Set the default spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsSpreadsheet,
}

var settingsLedgerCmd = &cobra.Command{
	Use:   "ledger [id]",
	Short: "Set the default ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLedger,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsCacheCmd)
	settingsCmd.AddCommand(settingsSpreadsheetCmd)
	settingsCmd.AddCommand(settingsLedgerCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	s, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(render(cmd, headerStyle, "Current Settings"))
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Sources]")
	cmd.Printf("  Default spreadsheet: %s\n", orNotSet(settings.Sources.DefaultSpreadsheetID))
	cmd.Printf("  Default ledger: %s\n", orNotSet(settings.Sources.DefaultLedgerID))
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend.Description())
	cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	switch settings.Cache.Backend {
	case domain.CacheBackendRedis:
		cmd.Printf("  Redis: %s (db %d)\n", settings.Cache.RedisAddr, settings.Cache.RedisDB)
	case domain.CacheBackendSQLite:
		cmd.Printf("  Directory: %s\n", orNotSet(settings.Cache.SQLiteDir))
	}
	cmd.Println()

	cmd.Println("[Google Sheets]")
	printToken(cmd, "Access token", settings.Google.AccessToken)
	printToken(cmd, "Refresh token", settings.Google.RefreshToken)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Google.IsConfigured()))
	cmd.Println()

	cmd.Println("[QuickBooks]")
	if settings.QuickBooks.UsesFixture() {
		cmd.Printf("  Fixture: %s\n", settings.QuickBooks.FixturePath)
	} else {
		cmd.Printf("  Realm: %s\n", orNotSet(settings.QuickBooks.RealmID))
		cmd.Printf("  Base URL: %s\n", settings.QuickBooks.BaseURL)
		printToken(cmd, "Access token", settings.QuickBooks.AccessToken)
		printToken(cmd, "Refresh token", settings.QuickBooks.RefreshToken)
	}
	cmd.Println()

	cmd.Println("[Upstream]")
	cmd.Printf("  Timeout: %s\n", settings.Upstream.Timeout)
	cmd.Println()

	if err := s.Settings.Validate(); err != nil {
		cmd.Println(render(cmd, warnStyle, fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'saturday-night settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsCache(cmd *cobra.Command, args []string) error {
	s, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	kind := domain.CacheBackendKind(strings.ToLower(args[0]))
	if !kind.IsValid() {
		return fmt.Errorf("unknown cache backend %q", args[0])
	}
	if err := s.Settings.SetCacheBackend(kind); err != nil {
		return fmt.Errorf("failed to set cache backend: %w", err)
	}

	cmd.Printf("Cache backend set to: %s\n", kind.Description())
	return nil
}

func runSettingsSpreadsheet(cmd *cobra.Command, args []string) error {
	s, err := requireSettings(cmd)
	if err != nil {
		return err
	}
	if err := s.Settings.SetDefaultSpreadsheet(args[0]); err != nil {
		return fmt.Errorf("failed to set default spreadsheet: %w", err)
	}
	cmd.Printf("Default spreadsheet set to: %s\n", args[0])
	return nil
}

func runSettingsLedger(cmd *cobra.Command, args []string) error {
	s, err := requireSettings(cmd)
	if err != nil {
		return err
	}
	if err := s.Settings.SetDefaultLedger(args[0]); err != nil {
		return fmt.Errorf("failed to set default ledger: %w", err)
	}
	cmd.Printf("Default ledger set to: %s\n", args[0])
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	s, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(render(cmd, headerStyle, "Saturday Night Settings Wizard"))
	cmd.Println("==============================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	// Step 1: Sources
	cmd.Println("Step 1: Default Sources")
	cmd.Println("-----------------------")
	settings.Sources.DefaultSpreadsheetID = prompt(cmd, reader, "Spreadsheet id", settings.Sources.DefaultSpreadsheetID)
	settings.Sources.DefaultLedgerID = prompt(cmd, reader, "Ledger (realm) id", settings.Sources.DefaultLedgerID)
	settings.QuickBooks.RealmID = settings.Sources.DefaultLedgerID
	cmd.Println()

	// Step 2: Cache backend
	cmd.Println("Step 2: Cache Backend")
	cmd.Println("---------------------")
	backends := domain.AllCacheBackends()
	current := 1
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
		if b == settings.Cache.Backend {
			current = i + 1
		}
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	settings.Cache.Backend = backends[parseChoice(readLine(reader), len(backends), current)-1]
	if settings.Cache.Backend == domain.CacheBackendRedis {
		settings.Cache.RedisAddr = prompt(cmd, reader, "Redis address", settings.Cache.RedisAddr)
	}
	cmd.Println()

	// Step 3: Credentials
	cmd.Println("Step 3: Credentials")
	cmd.Println("-------------------")
	cmd.Println("Leave a token empty to keep the stored one.")
	cmd.Print("Google access token: ")
	settings.Google.AccessToken = readPassword(cmd, reader)
	cmd.Println()
	cmd.Print("QuickBooks access token: ")
	settings.QuickBooks.AccessToken = readPassword(cmd, reader)
	cmd.Println()
	cmd.Println()

	if err := s.Settings.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	if err := s.Settings.Validate(); err != nil {
		cmd.Println(render(cmd, warnStyle, fmt.Sprintf("Warning: %v", err)))
		return nil
	}

	cmd.Println("Settings saved.")
	return nil
}

// requireSettings returns the services, failing if no settings service is wired.
func requireSettings(cmd *cobra.Command) (*Services, error) {
	s, err := requireServices(cmd)
	if err != nil {
		return nil, err
	}
	if s.Settings == nil {
		return nil, fmt.Errorf("settings service not configured")
	}
	return s, nil
}

// Helper functions.

func prompt(cmd *cobra.Command, reader *bufio.Reader, label, current string) string {
	cmd.Printf("%s [%s]: ", label, current)
	if v := readLine(reader); v != "" {
		return v
	}
	return current
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if in, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(int(in.Fd())) {
		password, err := term.ReadPassword(int(in.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func printToken(cmd *cobra.Command, label, token string) {
	if token == "" {
		cmd.Printf("  %s: (not set)\n", label)
		return
	}
	cmd.Printf("  %s: %s\n", label, maskAPIKey(token))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

