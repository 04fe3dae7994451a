package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"oecs-hq/lusaka/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Validate the configuration file without starting the server.

All validation problems are reported together, one per line.

Examples:
  oecs validate
  oecs validate --config /etc/oecs/oecs.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.Load(cfgFile)
		if err == nil {
			fmt.Printf("✓ %s is valid\n", cfgFile)
			return nil
		}

		var verr config.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("✗ %s has %d problem(s):\n", cfgFile, len(verr.Errors))
			for _, fe := range verr.Errors {
				fmt.Printf("  - %s\n", fe.Error())
			}
			return fmt.Errorf("configuration invalid")
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
