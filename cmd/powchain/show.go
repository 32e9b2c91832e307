package main

import (
	"log"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored chain",
	Run: func(cmd *cobra.Command, args []string) {
		bc, err := openChain()
		if err != nil {
			log.Fatalf("Failed to open chain: %v", err)
		}
		defer bc.Close()

		bc.PrintChain()
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
