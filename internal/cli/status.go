package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/kyc-demo/internal/kyc"
)

var statusCmd = &cobra.Command{
	Use:   "status <external-user-id>",
	Short: "Show the applicant record for a user",
	Long:  `Fetch the Sumsub applicant for the user and print the response as returned by the API`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := kyc.ValidateExternalUserID(args[0]); err != nil {
			return err
		}

		us, err := client.FetchUserStatus(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		appLogger.Debug("applicant found",
			slog.String("external_user_id", args[0]),
			slog.String("applicant_id", us.ID),
		)

		var out bytes.Buffer
		if err := json.Indent(&out, us.Raw, "", "  "); err != nil {
			return fmt.Errorf("failed to format response: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), out.String())
		return nil
	},
}
