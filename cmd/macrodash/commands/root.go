package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	catalogPath string
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "macrodash",
	Short: "macrodash - 매크로 유동성 대시보드",
	Long: `macrodash Unified CLI

Yahoo 종가와 FRED 매크로 시계열을 정렬해
Net Liquidity, Rate Spread 를 계산하는 대시보드 백엔드.

Usage:
  go run ./cmd/macrodash [command]

Examples:
  go run ./cmd/macrodash api
  go run ./cmd/macrodash api --with-scheduler
  go run ./cmd/macrodash fetch --window 6m --rows 5
  go run ./cmd/macrodash windows
  go run ./cmd/macrodash catalog`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "series catalog YAML (default: CATALOG_PATH or built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug log level)")
}
