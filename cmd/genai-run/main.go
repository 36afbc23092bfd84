package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "genai-run",
	Short: "Run generative jobs against the inference provider from the command line",
	Long: `genai-run drives the same job pipeline as the HTTP proxy without a server.

It reads the proxy configuration from the environment (and .env files),
validates a request against the configured route table, and either waits
for the prediction to finish or returns its id for later polling.

Examples:
  genai-run run txt2img --prompt "a lighthouse at dusk"
  genai-run run photomaker --prompt "portrait of a man img" --image ./face.png
  genai-run submit img2txt --image https://example.com/cat.jpg
  genai-run poll 7x3k2abc
  genai-run routes list
  genai-run routes validate --file routes.yaml`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(routesCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("env-file", "", "Extra .env file loaded after the defaults")
}
