package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ecommerce/auth-service/internal/core/password"
)

// hashPasswordCmd prints a bcrypt hash for seeding accounts directly in the store.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print the bcrypt hash of a password read from stdin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cost, _ := cmd.Flags().GetInt("cost")

		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("hash-password: no password on stdin")
		}
		plain := strings.TrimRight(line, "\r\n")
		if plain == "" {
			return errors.New("hash-password: empty password")
		}

		hash, err := password.NewHasher(cost).Hash(plain)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
		return err
	},
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)

	hashPasswordCmd.Flags().Int("cost", password.DefaultCost, "bcrypt work factor")
}
