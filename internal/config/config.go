// Package config loads and validates scraper configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alexandrainst/lrytas-scraper/internal/politeness"
)

// Config captures all configuration knobs loaded via Viper.
type Config struct {
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Delays    DelaysConfig    `mapstructure:"delays"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
	Hub       HubConfig       `mapstructure:"hub"`
	Ops       OpsConfig       `mapstructure:"ops"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ScraperConfig governs the acquisition loop and the site endpoints.
type ScraperConfig struct {
	SearchURL         string        `mapstructure:"search_url"`
	SiteRoot          string        `mapstructure:"site_root"`
	DatasetPath       string        `mapstructure:"dataset_path"`
	MaxArticles       int           `mapstructure:"max_articles"`
	Headless          bool          `mapstructure:"headless"`
	Debug             bool          `mapstructure:"debug"`
	UserAgent         string        `mapstructure:"user_agent"`
	WordListSize      int           `mapstructure:"word_list_size"`
	CooldownBatchSize int           `mapstructure:"cooldown_batch_size"`
	ProgressInterval  int           `mapstructure:"progress_interval"`
	NavTimeout        time.Duration `mapstructure:"nav_timeout"`
	FetchTimeout      time.Duration `mapstructure:"fetch_timeout"`
}

// DelaysConfig holds the politeness ranges. The debug ranges keep the exact
// same code paths at test-friendly speeds.
type DelaysConfig struct {
	ShortMin      time.Duration `mapstructure:"short_min"`
	ShortMax      time.Duration `mapstructure:"short_max"`
	LongMin       time.Duration `mapstructure:"long_min"`
	LongMax       time.Duration `mapstructure:"long_max"`
	DebugShortMin time.Duration `mapstructure:"debug_short_min"`
	DebugShortMax time.Duration `mapstructure:"debug_short_max"`
	DebugLongMin  time.Duration `mapstructure:"debug_long_min"`
	DebugLongMax  time.Duration `mapstructure:"debug_long_max"`
}

// SelectorsConfig pins the CSS selectors used against rendered pages. These
// track the live lrytas.lt markup and are expected to rot; keeping them in
// config means a markup change is a config fix, not a release.
type SelectorsConfig struct {
	SearchResult string `mapstructure:"search_result"`
	Consent      string `mapstructure:"consent"`
	Title        string `mapstructure:"title"`
	Summary      string `mapstructure:"summary"`
	Content      string `mapstructure:"content"`
	Unwanted     string `mapstructure:"unwanted"`
}

// HubConfig points the exporter at the remote dataset hub.
type HubConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Repo     string `mapstructure:"repo"`
	Split    string `mapstructure:"split"`
	Private  bool   `mapstructure:"private"`
	TokenEnv string `mapstructure:"token_env"`
}

// OpsConfig enables the optional metrics/health endpoint.
type OpsConfig struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// LoggingConfig toggles zap development features and the log file mirror.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
}

// Load builds a Config from disk/environment. An empty path skips the config
// file and relies on defaults plus LRYTAS_* env vars.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LRYTAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.search_url", "https://www.lrytas.lt/search?q=%s")
	v.SetDefault("scraper.site_root", "https://www.lrytas.lt")
	v.SetDefault("scraper.dataset_path", "data/raw/dataset.jsonl")
	v.SetDefault("scraper.max_articles", 10)
	v.SetDefault("scraper.headless", true)
	v.SetDefault("scraper.debug", false)
	v.SetDefault("scraper.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scraper.word_list_size", 1000)
	v.SetDefault("scraper.cooldown_batch_size", 25)
	v.SetDefault("scraper.progress_interval", 10)
	v.SetDefault("scraper.nav_timeout", "45s")
	v.SetDefault("scraper.fetch_timeout", "30s")

	v.SetDefault("delays.short_min", "30s")
	v.SetDefault("delays.short_max", "60s")
	v.SetDefault("delays.long_min", "5m")
	v.SetDefault("delays.long_max", "7m")
	v.SetDefault("delays.debug_short_min", "100ms")
	v.SetDefault("delays.debug_short_max", "150ms")
	v.SetDefault("delays.debug_long_min", "100ms")
	v.SetDefault("delays.debug_long_max", "150ms")

	v.SetDefault("selectors.search_result", "h3 a[href]")
	v.SetDefault("selectors.consent", ".css-1wpnpbq")
	v.SetDefault("selectors.title",
		`h1.text-2xl.lg\:text-\[34px\].lg\:leading-\[46px\].mb-4.lg\:mb-8.text-black-custom`)
	v.SetDefault("selectors.summary", "div.summary")
	v.SetDefault("selectors.content", "div.max-w-full.article-content.w-full")
	v.SetDefault("selectors.unwanted", ".related-articles-inline, .swiper, .thumbnail")

	v.SetDefault("hub.endpoint", "https://hub.alexandrainst.dk")
	v.SetDefault("hub.repo", "alexandrainst/lrytas-summarization")
	v.SetDefault("hub.split", "train")
	v.SetDefault("hub.private", true)
	v.SetDefault("hub.token_env", "LRYTAS_HUB_TOKEN")

	v.SetDefault("ops.metrics_addr", "")

	v.SetDefault("logging.development", true)
	v.SetDefault("logging.file", "scraper.log")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if !strings.Contains(c.Scraper.SearchURL, "%s") {
		return fmt.Errorf("scraper.search_url must contain a %%s query placeholder")
	}
	if c.Scraper.SiteRoot == "" {
		return fmt.Errorf("scraper.site_root must be set")
	}
	if c.Scraper.DatasetPath == "" {
		return fmt.Errorf("scraper.dataset_path must be set")
	}
	if c.Scraper.MaxArticles <= 0 {
		return fmt.Errorf("scraper.max_articles must be > 0")
	}
	if c.Scraper.WordListSize <= 0 {
		return fmt.Errorf("scraper.word_list_size must be > 0")
	}
	if c.Scraper.CooldownBatchSize <= 0 {
		return fmt.Errorf("scraper.cooldown_batch_size must be > 0")
	}
	if c.Scraper.NavTimeout <= 0 || c.Scraper.FetchTimeout <= 0 {
		return fmt.Errorf("scraper timeouts must be > 0")
	}
	for name, r := range map[string][2]time.Duration{
		"delays.short":       {c.Delays.ShortMin, c.Delays.ShortMax},
		"delays.long":        {c.Delays.LongMin, c.Delays.LongMax},
		"delays.debug_short": {c.Delays.DebugShortMin, c.Delays.DebugShortMax},
		"delays.debug_long":  {c.Delays.DebugLongMin, c.Delays.DebugLongMax},
	} {
		if r[0] <= 0 || r[1] < r[0] {
			return fmt.Errorf("%s range is invalid [%s, %s]", name, r[0], r[1])
		}
	}
	if c.Hub.Repo == "" || c.Hub.Split == "" {
		return fmt.Errorf("hub.repo and hub.split must be set")
	}
	return nil
}

// Politeness maps the delay ranges onto a politeness.Config, swapping in the
// debug ranges when the debug flag is up.
func (c Config) Politeness() politeness.Config {
	if c.Scraper.Debug {
		return politeness.Config{
			Short: politeness.Range{Min: c.Delays.DebugShortMin, Max: c.Delays.DebugShortMax},
			Long:  politeness.Range{Min: c.Delays.DebugLongMin, Max: c.Delays.DebugLongMax},
		}
	}
	return politeness.Config{
		Short: politeness.Range{Min: c.Delays.ShortMin, Max: c.Delays.ShortMax},
		Long:  politeness.Range{Min: c.Delays.LongMin, Max: c.Delays.LongMax},
	}
}
