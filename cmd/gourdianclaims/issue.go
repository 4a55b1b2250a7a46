package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gourdian25/gourdianclaims"
	"github.com/spf13/cobra"
)

func newIssueCmd(root *rootOptions) *cobra.Command {
	var (
		claims     []string
		claimsJSON string
		validity   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a token for the given claims",
		Example: `  gourdianclaims issue --claim user_id=42 --claim role=admin
  gourdianclaims issue --claims-json '{"user_id":42,"scopes":["read"]}' --validity 30m`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := parseClaims(claimsJSON, claims)
			if err != nil {
				return err
			}

			manager, cleanup, err := root.newManager(cmd.Context(), validityOverride(cmd, validity))
			if err != nil {
				return err
			}
			defer cleanup()

			token, err := manager.IssueToken(cmd.Context(), set)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&claims, "claim", nil, "claim as key=value, repeatable")
	cmd.Flags().StringVar(&claimsJSON, "claims-json", "", "claims as a JSON object, merged before --claim")
	cmd.Flags().DurationVar(&validity, "validity", 0, "token lifetime, 0 never expires (default from GOURDIAN_JWT_VALIDITY_PERIOD)")
	return cmd
}

// parseClaims merges a JSON object with key=value pairs, pairs winning.
func parseClaims(claimsJSON string, pairs []string) (gourdianclaims.ClaimSet, error) {
	set := gourdianclaims.ClaimSet{}
	if strings.TrimSpace(claimsJSON) != "" {
		if err := json.Unmarshal([]byte(claimsJSON), &set); err != nil {
			return nil, fmt.Errorf("invalid --claims-json: %w", err)
		}
		if set == nil {
			return nil, fmt.Errorf("invalid --claims-json: not a JSON object")
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --claim %q: expected key=value", pair)
		}
		set[key] = value
	}
	return set, nil
}
