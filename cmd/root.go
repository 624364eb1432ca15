/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/ademuri/listening-insights/internal/analysis"
	"github.com/ademuri/listening-insights/internal/cache"
	"github.com/ademuri/listening-insights/internal/copywriter"
	"github.com/ademuri/listening-insights/internal/llm"
	"github.com/ademuri/listening-insights/internal/store"
)

var cfgFile string
var lastFmApiKey string
var lastFmSecret string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listening-insights",
	Short: "Turns listening history into insights and short commentary",
	Long: `Imports listening history into a local SQLite database, computes
musical age, mood ring, genre passport, night owl, radar and psychometric
insights, and writes short generated commentary about them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listening-insights.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&lastFmApiKey, "api_key", "", "", "last.fm API key")
	viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api_key"))

	rootCmd.PersistentFlags().StringVarP(
		&lastFmSecret, "secret", "", "", "last.fm secret")
	viper.BindPFlag("secret", rootCmd.PersistentFlags().Lookup("secret"))

	var user string
	rootCmd.PersistentFlags().StringVarP(
		&user, "user", "u", "", "username to act on")
	viper.BindPFlag("user", rootCmd.PersistentFlags().Lookup("user"))

	var databasePath string
	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./insights.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	var timezone string
	rootCmd.PersistentFlags().StringVar(&timezone, "timezone", "", "IANA time zone for hour-of-day insights (default is the local zone)")
	viper.BindPFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))

	var verbose bool
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	var from string
	rootCmd.PersistentFlags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", rootCmd.PersistentFlags().Lookup("from"))

	var sendgridKey string
	rootCmd.PersistentFlags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key")
	viper.BindPFlag("sendgrid_api_key", rootCmd.PersistentFlags().Lookup("sendgrid_api_key"))

	var aiEnabled bool
	rootCmd.PersistentFlags().BoolVar(&aiEnabled, "ai", true, "Generate commentary with a language model")
	viper.BindPFlag("ai.enabled", rootCmd.PersistentFlags().Lookup("ai"))

	var provider string
	rootCmd.PersistentFlags().StringVar(&provider, "ai_provider", "ollama", "Generator backend: ollama or gemini")
	viper.BindPFlag("ai.provider", rootCmd.PersistentFlags().Lookup("ai_provider"))

	setDefaults()
}

func setDefaults() {
	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "ollama")
	viper.SetDefault("ai.timeout", copywriter.DefaultTimeout)
	viper.SetDefault("ai.requests_per_minute", 30)
	viper.SetDefault("cache.ttl_minutes", int(copywriter.DefaultTTL/time.Minute))
	viper.SetDefault("cache.failure_ttl_minutes", int(copywriter.DefaultFailureTTL/time.Minute))
	viper.SetDefault("cache.capacity", cache.DefaultCapacity)
	viper.SetDefault("cache.remote", true)
	viper.SetDefault("psycho.volatility_min_mapped", analysis.DefaultVolatilityMinMapped)
	viper.SetDefault("psycho.volatility_medium", analysis.DefaultVolatilityMedium)
	viper.SetDefault("psycho.volatility_high", analysis.DefaultVolatilityHigh)
	viper.SetDefault("psycho.max_volatility", analysis.DefaultMaxVolatility)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listening-insights" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listening-insights")
	}

	viper.SetEnvPrefix("INSIGHTS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// requireConfig fails like cobra's required flags when any key is unset.
func requireConfig(keys ...string) error {
	var missing []string
	for _, k := range keys {
		if viper.GetString(k) == "" {
			missing = append(missing, fmt.Sprintf("%q", k))
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) %s not set", strings.Join(missing, ", "))
	}
	return nil
}

func currentUser() string {
	return strings.ToLower(viper.GetString("user"))
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func location() (*time.Location, error) {
	tz := viper.GetString("timezone")
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	return loc, nil
}

func psychoConfig() analysis.PsychoConfig {
	return analysis.PsychoConfig{
		VolatilityMinMapped: viper.GetInt("psycho.volatility_min_mapped"),
		VolatilityMedium:    viper.GetInt("psycho.volatility_medium"),
		VolatilityHigh:      viper.GetInt("psycho.volatility_high"),
		MaxVolatility:       viper.GetFloat64("psycho.max_volatility"),
	}
}

func newGenerator() (llm.Generator, error) {
	var g llm.Generator
	switch p := strings.ToLower(viper.GetString("ai.provider")); p {
	case "", "ollama":
		g = llm.NewOllamaClient(viper.GetString("ai.host"), viper.GetString("ai.model"))
	case "gemini":
		g = llm.NewGeminiClient(viper.GetString("ai.host"), viper.GetString("ai.api_key"), viper.GetString("ai.model"))
	default:
		return nil, fmt.Errorf("unknown ai.provider %q", p)
	}
	return llm.RateLimited(g, llm.PerMinute(viper.GetInt("ai.requests_per_minute"))), nil
}

func newCacheService(db *store.Store, log logrus.FieldLogger) *cache.Service {
	local := cache.NewMemory(viper.GetInt("cache.capacity"))
	var remote cache.Backend
	if viper.GetBool("cache.remote") && db != nil {
		remote = db.Cache()
	}
	return cache.NewService(local, remote, log)
}

func newOrchestrator(db *store.Store, log logrus.FieldLogger) (*copywriter.Orchestrator, error) {
	gen, err := newGenerator()
	if err != nil {
		return nil, err
	}
	cfg := copywriter.Config{
		Enabled:    viper.GetBool("ai.enabled"),
		TTL:        time.Duration(viper.GetInt("cache.ttl_minutes")) * time.Minute,
		FailureTTL: time.Duration(viper.GetInt("cache.failure_ttl_minutes")) * time.Minute,
		Timeout:    viper.GetDuration("ai.timeout"),
	}
	return copywriter.New(gen, newCacheService(db, log), cfg, log), nil
}

// loadHistory reads the user's history in [start, end) and stamps it with the
// configured time zone.
func loadHistory(db *store.Store, user string, start, end time.Time) (analysis.History, error) {
	loc, err := location()
	if err != nil {
		return analysis.History{}, err
	}
	h, err := db.History(user, start, end, 0)
	if err != nil {
		return analysis.History{}, fmt.Errorf("loading history: %w", err)
	}
	h.Location = loc
	return h, nil
}
