// Package mappings manages the stored merchant mapping collection
package mappings

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"ledgerline/bankfeed/cmd/root"
	"ledgerline/bankfeed/internal/models"
)

// Cmd represents the mappings command
var Cmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage stored merchant mappings",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored merchant mappings",
	RunE:  listFunc,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Bulk-import merchant mappings from a CSV file",
	Long: `Import merchant mappings from a CSV file with columns Merchant, Category,
Confidence, Manual and Aliases (pipe-separated). Existing entries for the
same merchant are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: importFunc,
}

func init() {
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(importCmd)
}

// mappingRow is the CSV schema for mapping import and export.
type mappingRow struct {
	Merchant   string  `csv:"Merchant"`
	Category   string  `csv:"Category"`
	Confidence float64 `csv:"Confidence"`
	Manual     bool    `csv:"Manual"`
	Aliases    string  `csv:"Aliases"`
}

func listFunc(cmd *cobra.Command, args []string) error {
	mappings := root.Deps.GetCategorizer().Mappings()
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].Merchant < mappings[j].Merchant
	})

	rows := make([]mappingRow, 0, len(mappings))
	for _, m := range mappings {
		rows = append(rows, mappingRow{
			Merchant:   m.Merchant,
			Category:   m.Category,
			Confidence: m.Confidence,
			Manual:     m.IsManual,
			Aliases:    strings.Join(m.Aliases, "|"),
		})
	}

	return gocsv.Marshal(&rows, os.Stdout)
}

func importFunc(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}
	defer func() {
		_ = f.Close()
	}()

	var rows []mappingRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	imports := make([]models.MerchantMapping, 0, len(rows))
	for _, row := range rows {
		mapping := models.MerchantMapping{
			Merchant:   row.Merchant,
			Category:   row.Category,
			Confidence: row.Confidence,
			IsManual:   row.Manual,
		}
		if row.Aliases != "" {
			mapping.Aliases = strings.Split(row.Aliases, "|")
		}
		imports = append(imports, mapping)
	}

	report := root.Deps.GetCategorizer().ImportMappings(imports)

	fmt.Printf("Imported %d mappings\n", len(report.Success))
	for merchant, err := range report.Errors {
		fmt.Printf("Skipped %q: %v\n", merchant, err)
	}
	if len(report.Errors) > 0 {
		return fmt.Errorf("%d mappings failed to import", len(report.Errors))
	}
	return nil
}
