package main

import (
	"github.com/spf13/cobra"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/dto"
)

func newCandidatesCmd(opts *rootOptions) *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "candidates",
		Short: "Print the candidates a user would be shown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUserFlag("user", user)
			if err != nil {
				return err
			}

			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			result, err := rt.service.Candidates(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.NewCandidatesResponse(result))
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user id to build candidates for")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newExplainCmd(opts *rootOptions) *cobra.Command {
	var user, candidate string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show why a candidate is or is not compatible with a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			userID, err := parseUserFlag("user", user)
			if err != nil {
				return err
			}
			candidateID, err := parseUserFlag("candidate", candidate)
			if err != nil {
				return err
			}

			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			explanation, err := rt.service.Explain(cmd.Context(), userID, candidateID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), dto.NewCompatibilityResponse(explanation))
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "viewing user id")
	cmd.Flags().StringVar(&candidate, "candidate", "", "candidate user id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("candidate")
	return cmd
}
