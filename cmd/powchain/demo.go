package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/powchain/internal/blockchain"
	"github.com/yourusername/powchain/internal/crypto"
	"github.com/yourusername/powchain/internal/pow"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an in-memory mining and tamper-detection walkthrough",
	Run: func(cmd *cobra.Command, args []string) {
		runDemo()
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo() {
	difficulty := viper.GetInt("difficulty")

	fmt.Println("🚀 Starting Proof-of-Work Chain Demo")
	fmt.Println("=" + "===================================")
	fmt.Printf("Difficulty: %d (fingerprints must start with %q)\n", difficulty, pow.Prefix(difficulty))

	// Create an in-memory chain; this mines the genesis block
	fmt.Println("\n⛏️  Mining genesis block...")
	bc, err := blockchain.NewBlockchain(difficulty, "")
	if err != nil {
		log.Fatalf("Failed to create chain: %v", err)
	}

	genesis := bc.GetLatestBlock()
	fmt.Printf("✓ Genesis block mined - Nonce: %d\n", genesis.Nonce)
	fmt.Printf("  Fingerprint: %s\n", genesis.Fingerprint)

	// Mine two payload blocks
	for _, payload := range []string{"Transaction Data 1", "Transaction Data 2"} {
		fmt.Printf("\n⛏️  Mining block %d (%q)...\n", bc.Height(), payload)
		block, err := bc.AddBlock(payload)
		if err != nil {
			log.Fatalf("Failed to add block: %v", err)
		}
		fmt.Printf("✓ Block %d mined - Nonce: %d\n", block.Index, block.Nonce)
		fmt.Printf("  Fingerprint: %s\n", block.Fingerprint)
	}

	// Validate the intact chain
	fmt.Println("\n🔍 Validating chain...")
	if err := bc.ValidateChain(); err != nil {
		log.Fatalf("Chain validation failed: %v", err)
	}
	fmt.Println("✓ Chain is valid!")

	// Tamper with a recorded payload
	victim, err := bc.GetBlock(1)
	if err != nil {
		log.Fatalf("Failed to get block 1: %v", err)
	}
	fmt.Printf("\n✏️  Tampering with block 1: %q -> %q\n",
		blockchain.FormatPayload(victim.Payload), "Transaction Data 999")
	victim.Payload = "Transaction Data 999"

	recomputed, err := crypto.HashBlock(victim)
	if err != nil {
		log.Fatalf("Failed to recompute fingerprint: %v", err)
	}
	fmt.Printf("  Stored fingerprint:     %s\n", victim.Fingerprint)
	fmt.Printf("  Recomputed fingerprint: %s\n", recomputed)

	// The audit now reports the mismatch
	fmt.Println("\n🔍 Validating chain again...")
	if err := bc.ValidateChain(); err != nil {
		fmt.Printf("✓ Tampering detected: %v\n", err)
	} else {
		log.Fatal("Tampering went undetected")
	}

	bc.PrintChain()

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  Total blocks: %d\n", bc.Height())
	fmt.Printf("  Difficulty: %d\n", bc.Difficulty)
	fmt.Printf("  Latest fingerprint: %s\n", bc.GetLatestBlock().Fingerprint)
	fmt.Println("\n✨ Run with --difficulty to change the mining cost!")
}
