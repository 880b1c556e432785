package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/homophones/assets"
	"github.com/robalobadob/homophones/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		fsys, err := assets.Migrations()
		if err != nil {
			return err
		}
		db, err := database.OpenMigrated(cfg.DBPath, fsys)
		if err != nil {
			return err
		}
		log.Info().Str("db", cfg.DBPath).Msg("schema up to date")
		return db.Close()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
