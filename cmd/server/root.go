package main

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jrsteele09/auth-service/internal/config"
)

// NewRootCmd creates the root command for the auth service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "auth-service",
		Short:        "Signup, login, 2FA and session token service",
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "YAML config file")
	flags.String("env-file", ".env", "file of KEY=VALUE pairs loaded into the environment")
	flags.String("port", "", "listen port")
	flags.String("env", "", "environment name (development, production)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("user-store", "", "user store backend (memory, postgres)")
	flags.String("token-store", "", "revoked token and 2FA code store backend (memory, redis)")
	flags.String("email-client", "", "email client (mock, postmark)")
	flags.String("password-policy", "", "password policy (production, development)")
	flags.String("database-url", "", "PostgreSQL connection string")
	flags.String("redis-host", "", "Redis host name")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}

// loadConfig reads the configuration, letting the command's flags override
// every other source.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	envFile, _ := cmd.Flags().GetString("env-file")

	opts := []config.Option{
		config.WithEnvFile(envFile),
		config.WithFlags(cmd.Flags()),
	}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	return config.New(opts...)
}

// configureLogging sets the global zerolog level and output format.
func configureLogging(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.GetLogLevel()))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(cfg.GetLogFormat(), "json") {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
