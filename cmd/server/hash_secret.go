package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/phrazzld/careplan-api/internal/service/auth"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

// newHashSecretCommand creates the hash-secret command, which prints the
// bcrypt hash to configure as auth.client_secret_hash.
func newHashSecretCommand() *cobra.Command {
	var cost int

	cmd := &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print the bcrypt hash of an API client secret",
		Long: `Print the bcrypt hash of an API client secret. The secret is read from
the first argument, or from the first line of stdin when no argument is given.

Example:
  careplan-api hash-secret 's3cret-value'
  echo 's3cret-value' | careplan-api hash-secret`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, args)
			if err != nil {
				return err
			}
			hash, err := auth.HashSecret(secret, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost,
		fmt.Sprintf("bcrypt cost (%d-%d)", bcrypt.MinCost, bcrypt.MaxCost))

	return cmd
}

func readSecret(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read secret: %w", err)
		}
		return "", fmt.Errorf("no secret given")
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}
