package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/xavhermans/clashofclans/coc"
	"github.com/xavhermans/clashofclans/config"
	"github.com/xavhermans/clashofclans/filter"
)

var (
	cfgFile      string
	cfg          *config.Config
	logger       zerolog.Logger
	client       *coc.Client
	filters      *filter.Manager
	outputFormat string
	showResponse bool

	// Shared command flags
	params     []string
	whereExpr  string
	presetName string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clashofclans",
	Short: "Query the Clash of Clans API from the command line",
	Long: `clashofclans searches clans, inspects clan details and wars, and lists
locations using the official Clash of Clans API.

Results can be narrowed locally with --where expressions, for example:
  clashofclans clans search -p name=coconut --where 'WarWins > 100 && hasLabel("Clan Wars")'`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: printLastResponse,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if showResponse {
			printLastResponse(rootCmd, nil)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: text or json (overrides output.format)")
	rootCmd.PersistentFlags().BoolVar(&showResponse, "show-response", false, "print the status and headers of the last API response to stderr")

	rootCmd.AddCommand(clansCmd)
	rootCmd.AddCommand(warCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// initializeApp loads the configuration and builds the API client
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging)

	if cmd.Flags().Changed("output") {
		if outputFormat != "text" && outputFormat != "json" {
			return fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", outputFormat)
		}
		cfg.Output.Format = outputFormat
	}

	filters = filter.NewManager()
	if err := filters.RegisterPresets(cfg.Filter.Presets); err != nil {
		return fmt.Errorf("invalid filter presets: %w", err)
	}

	client, err = coc.NewClient(cfg.API.Token, logger,
		coc.WithBaseURL(cfg.API.BaseURL),
		coc.WithTimeout(cfg.API.Timeout),
		coc.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	logger.Debug().
		Str("base_url", cfg.API.BaseURL).
		Strs("presets", filters.ListPresets()).
		Msg("Client initialized")

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// printLastResponse writes the status line and headers of the last API
// response to stderr when --show-response is set
func printLastResponse(cmd *cobra.Command, args []string) error {
	if !showResponse || client == nil {
		return nil
	}

	resp := client.LastResponse()
	if resp == nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "No API response recorded")
		return nil
	}

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "HTTP %d\n", resp.StatusCode)
	for _, name := range sortedHeaderNames(resp.Header) {
		fmt.Fprintf(w, "%s: %s\n", name, strings.Join(resp.Header[name], ", "))
	}
	return nil
}

// parseParams turns repeated key=value flags into query options
func parseParams(raw []string) (map[string]string, error) {
	options := make(map[string]string, len(raw))
	for _, p := range raw {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter '%s': expected key=value", p)
		}
		if _, dup := options[key]; dup {
			return nil, fmt.Errorf("parameter '%s' given more than once", key)
		}
		options[key] = value
	}
	return options, nil
}

// resolveFilter builds the filter for the --preset and --where flags
func resolveFilter() (filter.CompiledFilter, error) {
	f, err := filters.Resolve(presetName, whereExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter: %w", err)
	}
	if f != nil {
		logger.Debug().Str("filter", f.Expression()).Msg("Filtering results")
	}
	return f, nil
}

// addFilterFlags registers --where and --preset on cmd
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&whereExpr, "where", "w", "", "filter expression applied to the results")
	cmd.Flags().StringVar(&presetName, "preset", "", "use a filter preset from config")
}

// addParamFlag registers the repeatable -p key=value flag on cmd
func addParamFlag(cmd *cobra.Command, allowed []string) {
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil,
		"query option as key=value (allowed: "+strings.Join(allowed, ", ")+")")
}
