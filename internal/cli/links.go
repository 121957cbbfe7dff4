package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/kyc-demo/internal/kyc"
)

var errNoSessionLink = errors.New("no session link issued (see logs for the cause)")

var generateCmd = &cobra.Command{
	Use:   "generate <external-user-id>",
	Short: "Issue a verification session link",
	Long:  `Request a Sumsub WebSDK link for the user and print it`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := kyc.ValidateExternalUserID(args[0]); err != nil {
			return err
		}

		url, ok := service.Generate(cmd.Context(), args[0])
		if !ok {
			return errNoSessionLink
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var regenerateCmd = &cobra.Command{
	Use:   "regenerate <external-user-id>",
	Short: "Reset the user and issue a new verification session link",
	Long: `Look up the Sumsub applicant for the user, reset its verification state and request a new WebSDK link.

If the reset succeeds but the new link can't be issued, the user is left reset: run generate to issue a link.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := kyc.ValidateExternalUserID(args[0]); err != nil {
			return err
		}

		url, ok := service.Regenerate(cmd.Context(), args[0])
		if !ok {
			return errNoSessionLink
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}
