package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
)

var idDocCmd = &cobra.Command{
	Use:   "id-doc <applicant-id> <file>",
	Short: "Upload an identity document image for an applicant",
	Long: `Upload an identity document image to an existing Sumsub applicant.

Example:
  kyc-client id-doc 5f1a... ./passport.jpg --type PASSPORT --country GBR`,
	Args: cobra.ExactArgs(2),
	RunE: runIDDoc,
}

var (
	idDocType    string
	idDocCountry string
)

func init() {
	idDocCmd.Flags().StringVar(&idDocType, "type", "", "Document type, e.g PASSPORT, ID_CARD, DRIVERS (required)")
	idDocCmd.Flags().StringVar(&idDocCountry, "country", "", "ISO 3166-1 alpha-3 country code (required)")
	_ = idDocCmd.MarkFlagRequired("type")
	_ = idDocCmd.MarkFlagRequired("country")
}

func runIDDoc(cmd *cobra.Command, args []string) error {
	applicantID, path := args[0], args[1]

	f, err := os.Open(path) // #nosec G304 -- path is supplied by the operator running the CLI
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	doc, err := client.AddIDDocument(cmd.Context(), applicantID,
		sumsub.IDDocMetadata{IDDocType: idDocType, Country: idDocCountry},
		filepath.Base(path), f)
	if err != nil {
		return err
	}

	appLogger.Info("document uploaded",
		slog.String("applicant_id", applicantID),
		slog.String("id_doc_type", doc.IDDocType),
		slog.String("country", doc.Country),
	)
	fmt.Fprintln(cmd.OutOrStdout(), string(doc.Raw))
	return nil
}
