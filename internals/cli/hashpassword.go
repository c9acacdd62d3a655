package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"connwatch/internals/security"

	"github.com/spf13/cobra"
)

func NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Prints the argon2id hash to set as auth.admin_password_hash",
		Long: `Prints the argon2id hash to set as auth.admin_password_hash.
The password is read from the first argument or, when absent, from the first line of stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHashPassword,
	}
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	if password == "" {
		return errors.New("password must not be empty")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
