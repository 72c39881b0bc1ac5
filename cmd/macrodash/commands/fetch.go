package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/macrodash/internal/contracts"
)

// fetchCmd runs the pipeline once and prints the result
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "대시보드 1회 계산 후 출력",
	Long: `프로바이더에서 데이터를 받아 정렬, 파생 컬럼 계산, 요약까지
한 번 실행하고 결과를 출력합니다. 캐시는 사용하지 않습니다.

Example:
  go run ./cmd/macrodash fetch
  go run ./cmd/macrodash fetch --window 3m --rows 10
  go run ./cmd/macrodash fetch --start 2024-01-02`,
	RunE: runFetch,
}

var (
	fetchWindow string
	fetchStart  string
	fetchRows   int
)

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().StringVar(&fetchWindow, "window", "", "lookback preset (1m, 3m, 6m, ytd, 1y, 2y, 5y)")
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "explicit start date YYYY-MM-DD (overrides --window)")
	fetchCmd.Flags().IntVar(&fetchRows, "rows", 5, "마지막 N 행 출력 (0 = 전체)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	start, err := a.resolver.Resolve(fetchWindow, fetchStart)
	if err != nil {
		return err
	}

	fmt.Printf("Fetching from %s...\n", start.Format(contracts.DateLayout))
	began := time.Now()

	d, err := a.pipeline.Run(cmd.Context(), start)
	switch {
	case errors.Is(err, contracts.ErrEmptyResult):
		PrintWarning("No equity data yet for this window, try again later")
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		PrintError(fmt.Sprintf("Timed out after %s", a.cfg.Pipeline.FetchTimeout))
		return err
	case err != nil:
		PrintError(err.Error())
		return err
	}

	tail := &contracts.Table{Columns: d.Table.Columns, Rows: d.Table.Tail(fetchRows)}
	PrintRows(tail)
	fmt.Println()
	PrintSummary(&d.Summary)

	PrintSuccess(fmt.Sprintf("%d rows in %.2fs", d.Table.Len(), time.Since(began).Seconds()))
	return nil
}
