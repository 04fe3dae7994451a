package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"oecs-hq/lusaka/pkg/cli"
	"oecs-hq/lusaka/pkg/modes"
)

var modesFlags struct {
	asJSON    bool
	contracts bool
}

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "Show the mode catalog",
	Long: `Show the mode catalog: base cost, escalation factor, and whether
the mode admits partially when the budget runs short.

Examples:
  oecs modes
  oecs modes --json
  oecs modes --contracts`,
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog := modes.DefaultCatalog()

		if modesFlags.asJSON {
			descriptors := make([]modes.Descriptor, 0, 4)
			for _, m := range catalog.Modes() {
				descriptors = append(descriptors, catalog.Descriptor(m))
			}
			return cli.WriteJSON(os.Stdout, descriptors)
		}

		if modesFlags.contracts {
			for _, m := range catalog.Modes() {
				fmt.Printf("=== %s ===\n\n%s\n\n", m, modes.Contract(m))
			}
			return nil
		}

		table := cli.NewTable("MODE", "BASE COST", "ESCALATION", "PARTIAL", "DESCRIPTION")
		for _, m := range catalog.Modes() {
			d := catalog.Descriptor(m)
			table.AddRow(
				string(d.Name),
				strconv.FormatFloat(d.BaseCost, 'g', -1, 64),
				strconv.FormatFloat(d.EscalationFactor, 'g', -1, 64),
				strconv.FormatBool(d.AllowPartial),
				d.Description,
			)
		}
		return table.Write(os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)

	modesCmd.Flags().BoolVar(&modesFlags.asJSON, "json", false, "output as JSON")
	modesCmd.Flags().BoolVar(&modesFlags.contracts, "contracts", false, "print the full consent contracts")
}
