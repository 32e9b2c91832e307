package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine <payload> [payload]...",
	Short: "Mine one block per payload onto the stored chain",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		bc, err := openChain()
		if err != nil {
			log.Fatalf("Failed to open chain: %v", err)
		}
		defer bc.Close()

		for _, payload := range args {
			block, err := bc.AddBlock(payload)
			if err != nil {
				log.Fatalf("Failed to add block: %v", err)
			}
			fmt.Printf("⛏️  Block %d mined - Nonce: %d\n", block.Index, block.Nonce)
			fmt.Printf("  Fingerprint: %s\n", block.Fingerprint)
		}
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
}
