package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/macrodash/internal/lookback"
)

// windowsCmd lists the lookback presets
var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Lookback 프리셋 목록",
	RunE: func(cmd *cobra.Command, args []string) error {
		widths := []int{6, 10, 12}
		PrintTableHeader([]string{"Key", "Label", "Start"}, widths)
		for _, w := range lookback.NewResolver().Windows() {
			key := w.Key
			if key == lookback.DefaultWindow {
				key += "*"
			}
			PrintTableRow([]string{key, w.Label, w.Start}, widths)
		}
		fmt.Println("\n* default")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(windowsCmd)
}
