package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply embedded schema migrations",
	Long: `Create the database if needed and apply every migration that has not
been recorded in _migrations. Safe to run repeatedly; serve does the same
on startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB(dbPath())
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrate(db); err != nil {
			return err
		}
		log.Info().Str("db", dbPath()).Msg("database up to date")
		return nil
	},
}
