package cmd

import (
	"strconv"

	migrate "github.com/rubenv/sql-migrate"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/classterra/school-platform-backend/db"
)

type DatabaseCommand struct{}

func (c *DatabaseCommand) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Parent().PersistentPreRun(cmd.Parent(), args)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			err := cmd.Help()
			if err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migration helpers. Migrations are tracked in the table `schema_migrations`.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Parent().PersistentPreRun(cmd.Parent(), args)
		},
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}
	migrateCmd.AddCommand(c.migrateUpCmd())
	migrateCmd.AddCommand(c.migrateDownCmd())
	cmd.AddCommand(migrateCmd)

	return cmd
}

func (c *DatabaseCommand) migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up [count]",
		Short: "Migrates database up [count] migrations. Defaults to all.",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c.runMigration(migrate.Up, args)
		},
	}
}

func (c *DatabaseCommand) migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [count]",
		Short: "Migrates database down [count] migrations.",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			c.runMigration(migrate.Down, args)
		},
	}
}

func (c *DatabaseCommand) runMigration(dir migrate.MigrationDirection, args []string) {
	var count int
	if len(args) > 0 {
		var err error
		count, err = strconv.Atoi(args[0])
		if err != nil {
			log.Fatalf("Invalid [count] argument: %s", args[0])
		}
	}

	numMigrationsRun, err := db.Migrate(globalOptions.DatabaseURL, dir, count)
	if err != nil {
		log.Fatalf("Error migrating database: %s", err.Error())
	}

	if numMigrationsRun == 0 {
		log.Info("No migrations applied.")
	} else {
		log.Infof("Successfully applied %d migrations.", numMigrationsRun)
	}
}
