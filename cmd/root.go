package cmd

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdUtils "github.com/classterra/school-platform-backend/cmd/utils"
)

// globalOptions is a variable that holds the global CLI options that can be
// applied to any command or subcommand.
var globalOptions cmdUtils.GlobalOptionsType

func rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "school-platform",
		Short:   "Classterra School Management Platform",
		Long:    "The Classterra School Management Platform is a multi-tenant backend for school administration, enrollment and academic-year management.",
		Version: globalOptions.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if err := bindFlags(cmd); err != nil {
				log.Fatalf("Error binding config options: %s", err.Error())
			}

			globalOptions.LogLevel = viper.GetString("log-level")
			globalOptions.Environment = viper.GetString("environment")
			globalOptions.DatabaseURL = viper.GetString("database-url")

			logLevel, err := cmdUtils.ParseLogLevel(globalOptions.LogLevel)
			if err != nil {
				log.Fatalf("Error parsing log level: %s", err.Error())
			}
			log.SetLevel(logLevel)

			log.Info("Version: ", globalOptions.Version)
			log.Info("GitCommit: ", globalOptions.GitCommit)
		},
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			if err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}

	rootCmd.PersistentFlags().String("log-level", "INFO", `The log level used in this project. Options: "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", or "PANIC".`)
	rootCmd.PersistentFlags().String("environment", "development", `The environment where the application is running. Example: "development", "staging", "production".`)
	rootCmd.PersistentFlags().String("database-url", "postgres://localhost:5432/school_platform?sslmode=disable", "Postgres DB URL")

	return rootCmd
}

// bindFlags binds the command's flags (and its parents') to viper, so every
// option can also be provided through an environment variable. The env var
// name is the upper-snake-case flag name, e.g. --database-url => DATABASE_URL.
func bindFlags(cmd *cobra.Command) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for c := cmd; c != nil; c = c.Parent() {
		if err := viper.BindPFlags(c.Flags()); err != nil {
			return err
		}
		if err := viper.BindPFlags(c.PersistentFlags()); err != nil {
			return err
		}
	}
	return nil
}

// SetupCLI sets up the CLI and returns the root command with the subcommands
// attached.
func SetupCLI(version, gitCommit string) *cobra.Command {
	globalOptions.Version = version
	globalOptions.GitCommit = gitCommit
	rootCmd := rootCmd()

	// Add subcommands
	rootCmd.AddCommand((&ServeCommand{}).Command(&ServerService{}))
	rootCmd.AddCommand((&DatabaseCommand{}).Command())

	return rootCmd
}
