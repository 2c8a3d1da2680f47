package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/charprofile/internal/logging"
	"github.com/ppiankov/charprofile/internal/model"
)

// version is overridden at build time with -ldflags "-X .../internal/cli.version=..."
var version = "v0.3.0"

var (
	cfgFile string
	verbose bool

	// appConfig is the configuration resolved before any subcommand runs
	appConfig *model.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "charprofile",
	Short: "charprofile - Character profiles from BookNLP output",
	Long: `charprofile reads the .book JSON artifact produced by BookNLP and
prints a profile of the major characters of a book: how often each one is
mentioned, their referential gender, the names and pronouns used for them,
and the words attached to them as agent, patient, possessor or modifier.

It does not run any NLP itself. The .book file is the only input.`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command. Interrupts cancel in-flight work.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of charprofile.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "charprofile %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.charprofile/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in .env, the config file and ENV variables
func initConfig() {
	// A missing .env is the common case
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			// Search for config in home directory
			viper.AddConfigPath(filepath.Join(home, ".charprofile"))
			viper.SetConfigType("yaml")
			viper.SetConfigName("config")
		}
	}

	configureViper(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config file %s: %v\n", cfgFile, err)
	}
}

// configureViper registers defaults and the CHARPROFILE_* environment binding
func configureViper(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("limits.characters", d.Limits.Characters)
	v.SetDefault("limits.proper", d.Limits.Proper)
	v.SetDefault("limits.common", d.Limits.Common)
	v.SetDefault("limits.pronoun", d.Limits.Pronoun)
	v.SetDefault("limits.agent", d.Limits.Agent)
	v.SetDefault("limits.patient", d.Limits.Patient)
	v.SetDefault("limits.possessions", d.Limits.Possessions)
	v.SetDefault("limits.modifiers", d.Limits.Modifiers)
	v.SetDefault("strictness", string(d.Strictness))
	v.SetDefault("input.max_bytes", d.Input.MaxBytes)
	v.SetDefault("output.format", string(d.Output.Format))
	v.SetDefault("output.banner", d.Output.Banner)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)
	v.SetDefault("concurrency.workers", d.Concurrency.Workers)
	v.SetDefault("concurrency.rate_limit", d.Concurrency.RateLimit)
	v.SetDefault("concurrency.burst", d.Concurrency.Burst)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	// CHARPROFILE_LIMITS_CHARACTERS overrides limits.characters
	v.SetEnvPrefix("CHARPROFILE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// configFromViper decodes and validates the configuration held by v
func configFromViper(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup resolves the configuration and installs the logger
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := configFromViper(viper.GetViper())
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	appConfig = cfg
	return nil
}
