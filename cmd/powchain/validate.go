package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Audit the stored chain and report tampering",
	Run: func(cmd *cobra.Command, args []string) {
		bc, err := openChain()
		if err != nil {
			log.Fatalf("Failed to open chain: %v", err)
		}

		if err := bc.ValidateChain(); err != nil {
			fmt.Printf("✗ Chain is INVALID: %v\n", err)
			bc.Close()
			os.Exit(1)
		}

		fmt.Printf("✓ Chain is valid (%d blocks)\n", bc.Height())
		bc.Close()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
