package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/powchain/internal/blockchain"
	"github.com/yourusername/powchain/internal/pow"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "powchain",
	Short: "powchain: a proof-of-work secured hash chain",
	Long: `powchain maintains a chain of hash-linked blocks secured by
proof-of-work mining and detects tampering with recorded payloads.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogging()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringP("datadir", "d", "powchain-data", "data directory for chain storage")
	rootCmd.PersistentFlags().Int("difficulty", pow.DefaultDifficulty, "leading zero hex characters required of fingerprints")
	rootCmd.PersistentFlags().StringP("log-level", "v", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("datadir", rootCmd.PersistentFlags().Lookup("datadir"))
	_ = viper.BindPFlag("difficulty", rootCmd.PersistentFlags().Lookup("difficulty"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in a config file and environment variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}

	viper.SetEnvPrefix("powchain")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// openChain opens (or creates) the chain under the configured data directory
func openChain() (*blockchain.Blockchain, error) {
	return blockchain.NewBlockchain(viper.GetInt("difficulty"), viper.GetString("datadir"))
}
