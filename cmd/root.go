package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"football-pulse/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	appCfg  config.Config
)

// rootCmd is the base command called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "football-pulse",
	Short: "FootballPulse news and scores aggregator",
	Long:  "Collects football news from RSS, rewrites it with a language model, publishes live scores and serves both over HTTP.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
}

// envAliases are the plain variable names accepted alongside PULSE_* overrides.
var envAliases = map[string]string{
	"scores.api_key":   "FOOTBALL_API_KEY",
	"openai.api_key":   "OPENAI_API_KEY",
	"news.feed_urls":   "NEWS_SOURCE_URL",
	"news.daily_limit": "DAILY_LIMIT",
	"telegram.token":   "TELEGRAM_BOT_TOKEN",
	"telegram.chat_id": "TELEGRAM_CHAT_ID",
}

// configKeys are bound to PULSE_<SECTION>_<KEY> so env-only deployments work without a file.
var configKeys = []string{
	"app.log_level", "app.data_dir",
	"redis.addr", "redis.username", "redis.password", "redis.db",
	"scores.provider", "scores.base_url", "scores.api_key", "scores.rapidapi", "scores.country",
	"scores.leagues", "scores.season", "scores.logos_file", "scores.timeout", "scores.cache_ttl",
	"scores.poll_interval", "scores.fetch_interval",
	"news.feed_urls", "news.source", "news.category", "news.patterns", "news.daily_limit",
	"news.throttle", "news.max_articles", "news.rewrite", "news.language", "news.seen_ttl",
	"news.fetch_interval", "news.images.localize", "news.images.webp_quality",
	"openai.api_key", "openai.model", "openai.base_url",
	"telegram.token", "telegram.chat_id",
	"server.addr", "server.public_dir", "server.site_name", "server.site_url", "server.allowed_origins",
}

func initConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error reading .env: %v\n", err)
	}

	cfg, err := loadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	appCfg = cfg
	setupLogger(appCfg.App.LogLevel)
}

func loadConfig(v *viper.Viper, file string) (config.Config, error) {
	var cfg config.Config
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/football-pulse")
		v.AddConfigPath("configs")
	}

	v.SetEnvPrefix("PULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range configKeys {
		names := []string{k}
		if alias, ok := envAliases[k]; ok {
			names = append(names, "PULSE_"+strings.ToUpper(strings.ReplaceAll(k, ".", "_")), alias)
		}
		if err := v.BindEnv(names...); err != nil {
			return cfg, fmt.Errorf("bind env %s: %w", k, err)
		}
	}
	v.SetDefault("news.rewrite", true)

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return cfg, fmt.Errorf("error reading config: %w", err)
		}
	} else {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error parsing config: %w", err)
	}
	if ms := strings.TrimSpace(os.Getenv("THROTTLE_MS")); ms != "" {
		n, err := strconv.Atoi(ms)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid THROTTLE_MS %q", ms)
		}
		cfg.News.Throttle = (time.Duration(n) * time.Millisecond).String()
	}

	cfg.FillDefaults()
	return cfg, nil
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

// GetConfig exposes the loaded configuration to subcommands.
func GetConfig() config.Config {
	return appCfg
}
