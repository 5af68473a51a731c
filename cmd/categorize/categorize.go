// Package categorize handles merchant categorization commands
package categorize

import (
	"fmt"

	"github.com/spf13/cobra"

	"ledgerline/bankfeed/cmd/root"
	"ledgerline/bankfeed/internal/models"
)

var (
	merchant string
	setTo    string
)

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize",
	Short: "Look up or set the category for a merchant",
	Long: `Look up the category a merchant resolves to through stored mappings,
patterns and fuzzy matching, or record a manual mapping with --set.`,
	RunE: categorizeFunc,
}

func init() {
	Cmd.Flags().StringVarP(&merchant, "merchant", "m", "", "Merchant name")
	Cmd.Flags().StringVarP(&setTo, "set", "s", "", "Record a manual mapping to this category")
	_ = Cmd.MarkFlagRequired("merchant")
}

func categorizeFunc(cmd *cobra.Command, args []string) error {
	cat := root.Deps.GetCategorizer()

	if setTo != "" {
		if !models.IsKnownCategory(setTo) {
			return fmt.Errorf("unknown category %q, valid categories: %v", setTo, models.Categories)
		}
		if err := cat.AddMerchantMapping(merchant, setTo); err != nil {
			return err
		}
		fmt.Printf("Mapped %s to %s\n", merchant, setTo)
		return nil
	}

	result, ok := cat.FindMerchantCategory(merchant)
	if !ok {
		fmt.Printf("No local category for %s, run ingest to resolve it with AI\n", merchant)
		return nil
	}

	fmt.Printf("%s: %s (confidence %.2f, via %s)\n", merchant, result.Category, result.Confidence, result.Method)
	return nil
}
