package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/gazxxni/blogpipe/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "blogpipe",
	Short: "blogpipe: IT news collection and weekly digest posts",
	Long: `blogpipe collects IT news from RSS feeds into daily snapshots, summarizes
the past week with an LLM, and writes the digest as a Jekyll post.

Commands:
  collect   Fetch feeds and merge new articles into today's snapshot
  weekly    Summarize the last 7 days into a post
  fixdates  Backfill solution post dates from commit history
  schedule  Run collect and weekly on cron schedules
  serve     Start the MCP server over collected articles`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// Credentials usually live in .env next to the blog checkout
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Start with defaults
	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/blogpipe")
		viper.AddConfigPath(".")
	}

	// Environment variable overrides
	// BLOGPIPE_LLM_API_KEY -> llm.api_key
	viper.SetEnvPrefix("BLOGPIPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Explicitly bind nested env vars
	viper.BindEnv("data_dir", "BLOGPIPE_DATA_DIR")
	viper.BindEnv("posts_dir", "BLOGPIPE_POSTS_DIR")
	viper.BindEnv("logging.level", "BLOGPIPE_LOGGING_LEVEL")
	viper.BindEnv("feeds.max_items_per_feed", "BLOGPIPE_FEEDS_MAX_ITEMS_PER_FEED")
	viper.BindEnv("feeds.timeout", "BLOGPIPE_FEEDS_TIMEOUT")
	viper.BindEnv("llm.provider", "BLOGPIPE_LLM_PROVIDER")
	viper.BindEnv("llm.api_key", "BLOGPIPE_LLM_API_KEY")
	viper.BindEnv("llm.model", "BLOGPIPE_LLM_MODEL")
	viper.BindEnv("llm.base_url", "BLOGPIPE_LLM_BASE_URL")
	viper.BindEnv("summarizer.batch_size", "BLOGPIPE_SUMMARIZER_BATCH_SIZE")
	viper.BindEnv("summarizer.delay", "BLOGPIPE_SUMMARIZER_DELAY")
	viper.BindEnv("weekly.days", "BLOGPIPE_WEEKLY_DAYS")
	viper.BindEnv("history.github_token", "BLOGPIPE_HISTORY_GITHUB_TOKEN", "GITHUB_TOKEN")
	viper.BindEnv("schedule.timezone", "BLOGPIPE_SCHEDULE_TIMEZONE")
	viper.BindEnv("schedule.collect", "BLOGPIPE_SCHEDULE_COLLECT")
	viper.BindEnv("schedule.weekly", "BLOGPIPE_SCHEDULE_WEEKLY")
	viper.BindEnv("mcp.name", "BLOGPIPE_MCP_NAME")
	viper.BindEnv("mcp.version", "BLOGPIPE_MCP_VERSION")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	// Unmarshal into struct (merges config file with defaults)
	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Roots as a comma-separated list from env
	if roots := os.Getenv("BLOGPIPE_HISTORY_LOCAL_ROOTS"); roots != "" {
		cfg.History.LocalRoots = strings.Split(roots, ",")
	}
}
