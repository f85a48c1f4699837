// apps/go-server/main.go
//
// gemclash is the match-3 game server.
//
// Usage:
//
//	gemclash serve                 - Run the HTTP/websocket API
//	gemclash migrate               - Apply embedded schema migrations
//	gemclash player <nickname>     - Create a player and print its uid
//	gemclash rank [--player N]     - Print the leaderboard or a player's recent matches
//	gemclash token --player N      - Sign a bearer token for a player
//
// Global flags:
//
//	--db <path>  - SQLite database (default $DB_PATH or ./data/gemclash.db)
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flagDBPath string

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

var rootCmd = &cobra.Command{
	Use:          "gemclash",
	Short:        "GemClash match-3 game server",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (default $DB_PATH or ./data/gemclash.db)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(tokenCmd)
}

// dbPath resolves after .env has been loaded.
func dbPath() string {
	if flagDBPath != "" {
		return flagDBPath
	}
	return getEnv("DB_PATH", "./data/gemclash.db")
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
