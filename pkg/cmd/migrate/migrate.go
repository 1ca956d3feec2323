package migrate

import (
	"github.com/spf13/cobra"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/config"
	"github.com/mpapenbr/wrc-timing-go/pkg/db/migrate"
	"github.com/mpapenbr/wrc-timing-go/pkg/db/sqlite"
)

func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "performs database migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return startMigration()
		},
	}

	return cmd
}

func startMigration() error {
	if config.NewDB {
		log.Info("Removing store", log.String("db", config.DB))
		if err := sqlite.Remove(config.DB); err != nil {
			return err
		}
	}
	before, _, err := migrate.Version(config.DB)
	if err != nil {
		return err
	}
	if err := migrate.MigrateDB(config.DB); err != nil {
		return err
	}
	after, dirty, err := migrate.Version(config.DB)
	if err != nil {
		return err
	}
	if before == after {
		log.Info("No Migration required", log.Int("version", int(after)))
		return nil
	}
	log.Info("Migrated store",
		log.String("db", config.DB),
		log.Int("from", int(before)),
		log.Int("to", int(after)),
		log.Bool("dirty", dirty))
	return nil
}
