package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/macrodash/internal/catalog"
)

// catalogCmd validates and prints the series catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "시리즈 카탈로그 검증 및 출력",
	Long: `카탈로그 YAML 을 읽어 검증하고 시리즈와 공식을 출력합니다.
설정 파일이 없으면 기본 카탈로그를 사용합니다. API 키는 필요 없습니다.

Example:
  go run ./cmd/macrodash catalog --catalog ./catalog.yaml`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := catalog.LoadOrDefault(catalogPath)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	hash, err := cat.Hash()
	if err != nil {
		return err
	}

	widths := []int{12, 10, 8, 24}
	PrintTableHeader([]string{"Alias", "Code", "Provider", "Units"}, widths)
	for _, s := range cat.Series {
		PrintTableRow([]string{s.Alias, s.Code, string(s.Provider), s.Units}, widths)
	}

	fmt.Println()
	for _, f := range cat.Formulas {
		terms := make([]string, 0, len(f.Terms))
		for i, t := range f.Terms {
			op := "+"
			if t.Sign < 0 {
				op = "-"
			}
			if i == 0 && op == "+" {
				terms = append(terms, t.Column)
				continue
			}
			terms = append(terms, op+" "+t.Column)
		}
		fmt.Printf("   %s = (%s) / %g  [%s]\n", f.Name, strings.Join(terms, " "), f.Divisor, f.Units)
	}

	fmt.Println()
	PrintSuccess("Catalog valid (hash " + hash[:12] + ")")
	return nil
}
