package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/defaltsimon/tmdbie/cache"
	"github.com/defaltsimon/tmdbie/config"
	"github.com/defaltsimon/tmdbie/tmdb"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	client  *tmdb.Client
	store   *cache.Store[tmdb.MediaEntity]

	appVersion = "dev"
	buildTime  = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tmdbie",
	Short: "Look up movie, TV and people metadata from the command line",
	Long: `tmdbie resolves free-text queries against the themoviedb.org API and
prints typed movie, TV show or person records. Results are cached
in-process, so repeated lookups in one invocation never hit the
network twice.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion records build metadata for the version template and the
// upgrade command.
func SetVersion(version, built string) {
	appVersion = version
	buildTime = built
	rootCmd.Version = fmt.Sprintf("%s (built %s)", version, built)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

// initializeApp initializes the configuration, logger and API client
func initializeApp(cmd *cobra.Command, args []string) error {
	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	store = cache.New[tmdb.MediaEntity](
		cache.WithMaxAge(time.Duration(cfg.Cache.MaxAgeSeconds) * time.Second),
	)

	client, err = tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithTransportName(cfg.TMDB.Transport, tmdb.WithQPS(cfg.TMDB.QPS)),
		tmdb.WithCache(store),
		tmdb.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create TMDb client: %w", err)
	}

	return nil
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
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

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format; colors only when writing to a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
