package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robalobadob/gemclash/apps/go-server/internal/store"
)

var (
	flagRankPlayer int64
	flagRankLimit  int
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Show the leaderboard or one player's recent matches",
	Long: `Without flags, print the top players by best score.
With --player, print that player's latest settled pvp/pve matches.

Examples:
  gemclash rank
  gemclash rank --player 3 --limit 5`,
	Args: cobra.NoArgs,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().Int64Var(&flagRankPlayer, "player", 0, "Player uid whose match history to print")
	rankCmd.Flags().IntVar(&flagRankLimit, "limit", 20, "Number of matches to print with --player")
}

func runRank(cmd *cobra.Command, _ []string) error {
	db, err := openMigrated(dbPath())
	if err != nil {
		return err
	}
	defer db.Close()
	st := store.NewSQLiteStore(db, 0)
	ctx := cmd.Context()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	defer tw.Flush()

	if flagRankPlayer > 0 {
		rows, err := st.RecentMatches(ctx, flagRankPlayer, flagRankLimit)
		if err != nil {
			return fmt.Errorf("recent matches: %w", err)
		}
		fmt.Fprintf(tw, "Matches - %s\n", st.DisplayName(ctx, flagRankPlayer))
		fmt.Fprintln(tw, "WHEN\tMODE\tOPPONENT\tSCORE\tOUTCOME\tCOINS")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d-%d\t%s\t%d\n", r.CreatedAt, r.Mode, r.OpponentName, r.Score, r.OpponentScore, r.Outcome, r.Coins)
		}
		return nil
	}

	rows, err := st.Leaderboard(ctx)
	if err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}
	fmt.Fprintln(tw, "RANK\tPLAYER\tBEST")
	for i, r := range rows {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", i+1, r.Nickname, r.Score)
	}
	return nil
}

var playerCmd = &cobra.Command{
	Use:   "player <nickname>",
	Short: "Create a player and print its uid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openMigrated(dbPath())
		if err != nil {
			return err
		}
		defer db.Close()
		id, err := store.NewSQLiteStore(db, 0).CreatePlayer(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), id)
		return nil
	},
}
