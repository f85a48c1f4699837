package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var flagTokenPlayer int64

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign a bearer token for a player",
	Long: `Print an HS256 token carrying the player's uid, signed with $JWT_SECRET
and valid for $JWT_EXPIRES_DAYS days (default 14). Requests sent with
"Authorization: Bearer <token>" act as that player whatever uid the body names.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagTokenPlayer <= 0 {
			return fmt.Errorf("--player is required")
		}
		tok, exp, err := signJWT(flagTokenPlayer)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&flagTokenPlayer, "player", 0, "Player uid to embed")
}

// signJWT creates an HS256 JWT with the uid claim and a configurable expiry (JWT_EXPIRES_DAYS; default 14).
func signJWT(uid int64) (string, time.Time, error) {
	days := envInt("JWT_EXPIRES_DAYS", 14)
	secret := []byte(getEnv("JWT_SECRET", "dev_secret_change_me"))
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": uid,
		"exp": exp.Unix(),
		"iat": time.Now().Unix(),
	})
	ss, err := token.SignedString(secret)
	return ss, exp, err
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
