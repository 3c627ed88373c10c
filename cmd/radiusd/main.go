// radiusd is a reference CLI for the RADIUS engine: it can run an
// auth+accounting server against a configured client/secret table, or send
// a single client request and print the response.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "radiusd",
	Short:         "RADIUS (RFC 2865/2866) server and client CLI",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (YAML)")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(requestCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
