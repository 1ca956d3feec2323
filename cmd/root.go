/*
	Copyright 2023 Markus Papenbrock
*/

package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	ingestCmd "github.com/mpapenbr/wrc-timing-go/pkg/cmd/ingest"
	migrateCmd "github.com/mpapenbr/wrc-timing-go/pkg/cmd/migrate"
	showCmd "github.com/mpapenbr/wrc-timing-go/pkg/cmd/show"
	"github.com/mpapenbr/wrc-timing-go/pkg/cmd/util"
	"github.com/mpapenbr/wrc-timing-go/pkg/config"
	"github.com/mpapenbr/wrc-timing-go/version"
)

const envPrefix = "WRCT"

var (
	cfgFile         string
	shutdownTracing = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "wrct",
	Short:   "Ingests WRC timing data and derives rally metrics",
	Long:    ``,
	Version: version.FullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := util.SetupLogger(); err != nil {
			return err
		}
		shutdownTracing = util.SetupTelemetry(cmd.Context())
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		shutdownTracing()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:funlen // flag definitions
func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "",
		"config file (default is $HOME/.wrct.yml)")

	pf.StringVar(&config.DB, "db", "wrc.db", "path to the sqlite store file")
	pf.BoolVar(&config.NewDB, "new-db", false,
		"remove an existing store file before use")
	pf.StringVar(&config.ResultsURL, "results-url", config.DefaultResultsURL,
		"base URL of the results endpoints")
	pf.StringVar(&config.TimingURL, "timing-url", config.DefaultTimingURL,
		"base URL of the timing endpoints")
	pf.StringVar(&config.CORSProxy, "cors-proxy", "",
		"prefix applied to all upstream requests")
	pf.BoolVar(&config.CacheEnabled, "cache", true, "cache upstream responses")
	pf.StringVar(&config.CacheBackend, "cache-backend", "memory",
		"cache backend (memory, filesystem, sqlite)")
	pf.DurationVar(&config.CacheTTL, "cache-ttl", 5*time.Minute,
		"time to live of cached responses")
	pf.StringVar(&config.CachePath, "cache-path", ".wrct-cache",
		"location of the filesystem and sqlite cache")
	pf.DurationVar(&config.FetchTimeout, "fetch-timeout", 5*time.Second,
		"timeout per upstream request")
	pf.Float64Var(&config.RateLimit, "rate-limit", 0,
		"max upstream requests per second (0: unlimited)")
	pf.StringVar(&config.PatchFile, "patch-file", "",
		"JSON or YAML document with split distance patches")

	pf.StringVar(&config.LogLevel, "log-level", "info",
		"controls the log level (debug, info, warn, error, fatal)")
	pf.StringVar(&config.LogFormat, "log-format", "text",
		"controls the log output format (json, text)")
	pf.StringVar(&config.LogFilter, "log-filter", "",
		"zapfilter rules (example: '*:* -debug:store.*')")
	pf.BoolVar(&config.EnableTelemetry, "enable-telemetry", false,
		"enables telemetry")
	pf.StringVar(&config.TelemetryEndpoint, "telemetry-endpoint", "",
		"otlp grpc endpoint (empty: spans are written to stdout)")

	pf.IntVar(&config.Year, "year", time.Now().Year(), "season year")
	pf.StringVar(&config.Championship, "championship", "wrc",
		"championship (wrc, wrc2, wrc3, jwrc)")
	pf.StringVar(&config.Category, "category", "P0",
		"priority filter (P0: all entries)")

	// add commands here
	rootCmd.AddCommand(migrateCmd.NewMigrateCmd())
	rootCmd.AddCommand(ingestCmd.NewIngestCmd())
	rootCmd.AddCommand(showCmd.NewShowCmd())
}

// initConfig reads in .env, config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Could not read .env:", err)
	}
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".wrct" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".wrct")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	bindAll(rootCmd, viper.GetViper())
}

func bindAll(cmd *cobra.Command, v *viper.Viper) {
	bindFlags(cmd, v)
	for _, c := range cmd.Commands() {
		bindAll(c, v)
	}
}

// Bind each cobra flag to its associated viper configuration
// (config file and environment variable)
func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		// Environment variables can't have dashes in them, so bind them to their
		// equivalent keys with underscores, e.g. --cache-ttl to WRCT_CACHE_TTL
		if strings.Contains(f.Name, "-") {
			envVarSuffix := strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
			if err := v.BindEnv(f.Name,
				fmt.Sprintf("%s_%s", envPrefix, envVarSuffix)); err != nil {
				fmt.Fprintf(os.Stderr, "Could not bind env var %s: %v", f.Name, err)
			}
		}
		// Apply the viper config value to the flag when the flag is not set and viper
		// has a value
		if !f.Changed && v.IsSet(f.Name) {
			val := v.Get(f.Name)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				fmt.Fprintf(os.Stderr, "Could set flag value for %s: %v", f.Name, err)
			}
		}
	})
}
