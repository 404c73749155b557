// Command token issues an operator token for the settings endpoints.
package main

import (
	"fmt"
	"os"
	"time"

	"avril/internal/entity"
	jwtPkg "avril/pkg/jwt"
	"avril/pkg/log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	username string
	ttl      time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "token",
	Short: "Sign an operator token for the schedule and command endpoints",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	rootCmd.Flags().StringVarP(&username, "user", "u", "operator", "operator name written into the token")
	rootCmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, _ []string) error {
	logger := log.NewLogger()
	if err := godotenv.Load(); err != nil {
		logger.Warnf("No .env file loaded: %v", err)
	}

	token, expiresAt, err := jwtPkg.Sign(entity.Operator{ID: uuid.NewString(), Username: username}, ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	logger.WithField("expires_at", time.Unix(expiresAt, 0).Format(time.RFC3339)).Info("Operator token issued")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
