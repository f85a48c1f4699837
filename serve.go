// apps/go-server/serve.go
//
// The serve command.
// Responsibilities:
//   - Load game tuning and open the migrated player database.
//   - Build the session service over the SQLite progression store.
//   - Mount the HTTP API and listen on --port (or $PORT).

package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/gemclash/apps/go-server/internal/config"
	"github.com/robalobadob/gemclash/apps/go-server/internal/game"
	"github.com/robalobadob/gemclash/apps/go-server/internal/httpserver"
	"github.com/robalobadob/gemclash/apps/go-server/internal/store"
)

var (
	flagPort   string
	flagConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the game API",
	Long: `Open the database, apply pending migrations, load the game tuning and
serve the HTTP API plus the /ws/pvp/status feed.

Tuning is read from --config, then $GAME_CONFIG, then ./configs/game.yaml,
then the copy compiled into the binary.

Examples:
  gemclash serve
  gemclash serve --port 8080 --db ./dev.db
  gemclash serve --config ./configs/fast-matches.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagPort, "port", "", "Listen port (default $PORT or 5175)")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Game tuning YAML (default $GAME_CONFIG)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = getEnv("GAME_CONFIG", "")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	db, err := openDB(dbPath())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		return err
	}

	st := store.NewSQLiteStore(db, cfg.Rewards.UnlockBonus)
	svc := game.NewService(cfg, st, game.Options{})
	srv := httpserver.New(svc)

	port := flagPort
	if port == "" {
		port = getEnv("PORT", "5175")
	}
	log.Info().Str("port", port).Str("db", dbPath()).Int("levels", len(cfg.Levels)).Msg("starting go-server")
	return srv.Start(":" + port)
}
