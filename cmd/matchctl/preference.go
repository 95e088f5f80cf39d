package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/enums"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/domain/model"
)

func newPreferenceCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preference",
		Short: "Manage questionnaire answers used for matching",
	}

	var user, gender, seeking string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store a user's declared gender and seeking preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pref, err := buildPreference(user, gender, seeking)
			if err != nil {
				return err
			}

			rt, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.repo.SavePreference(cmd.Context(), pref); err != nil {
				return err
			}
			if err := rt.cached.Invalidate(cmd.Context(), pref.UserID); err != nil {
				return fmt.Errorf("preference saved but cache invalidation failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %s: gender=%s seeking=%s\n", pref.UserID, pref.DeclaredGender, pref.SeekingGender)
			return nil
		},
	}
	set.Flags().StringVar(&user, "user", "", "user id")
	set.Flags().StringVar(&gender, "gender", "", "declared gender (male, female, non_binary, unknown)")
	set.Flags().StringVar(&seeking, "seeking", "", "seeking gender (men, women, non_binary, everyone)")
	_ = set.MarkFlagRequired("user")

	cmd.AddCommand(set)
	return cmd
}

func buildPreference(user, gender, seeking string) (model.UserPreference, error) {
	userID, err := parseUserFlag("user", user)
	if err != nil {
		return model.UserPreference{}, err
	}
	declared, ok := enums.ParseGender(gender)
	if !ok {
		return model.UserPreference{}, fmt.Errorf("unsupported --gender %q", gender)
	}
	wants, ok := enums.ParseSeeking(seeking)
	if !ok {
		return model.UserPreference{}, fmt.Errorf("unsupported --seeking %q", seeking)
	}
	return model.UserPreference{
		UserID:         userID,
		DeclaredGender: declared,
		SeekingGender:  wants,
	}, nil
}
