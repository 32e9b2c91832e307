package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourusername/powchain/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the stored chain over HTTP",
	Run: func(cmd *cobra.Command, args []string) {
		bc, err := openChain()
		if err != nil {
			log.Fatalf("Failed to open chain: %v", err)
		}
		defer bc.Close()

		server := api.NewServer(viper.GetString("listen"), bc)
		server.Start()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		server.Stop()
	},
}

func init() {
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	_ = viper.BindPFlag("listen", serveCmd.Flags().Lookup("listen"))
	rootCmd.AddCommand(serveCmd)
}
