package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gourdian25/gourdianclaims"
	"github.com/spf13/cobra"
)

var errAbsent = errors.New("token rejected")

func newVerifyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token|->",
		Short: "Verify a token and print its claims",
		Long: `Verify checks the signature and expiry of a token and prints its claims as
JSON. A rejected token prints the diagnostic and exits with status 1.
Pass - to read the token from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := readToken(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			manager, cleanup, err := root.newManager(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer cleanup()

			claims, diag, err := manager.VerifyToken(cmd.Context(), token)
			if err != nil {
				return err
			}
			if claims == nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "absent: %s\n", diag)
				return errAbsent
			}
			return printClaims(cmd.OutOrStdout(), claims)
		},
	}
}

func readToken(in io.Reader, arg string) (string, error) {
	if arg != "-" {
		return strings.TrimSpace(arg), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printClaims(w io.Writer, claims gourdianclaims.ClaimSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(claims)
}
