package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	scenarioPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "srm",
	Short: "SRM 구매 시뮬레이터 - 공급사 관계 관리 턴제 게임",
	Long: `SRM Procurement Simulator

30일 동안 생산 라인에 자재를 공급하는 구매 담당자 게임.
공급사 선택, 발주, 대금 지급 타이밍이 평판과 가격에 영향을 줍니다.

Usage:
  go run ./cmd/srm [command]

Examples:
  go run ./cmd/srm play --seed 42
  go run ./cmd/srm simulate --runs 50 --policy on_due
  go run ./cmd/srm export --seed 7 --out transactions.csv
  go run ./cmd/srm catalog --reveal
  go run ./cmd/srm api`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&scenarioPath, "scenario", "", "scenario YAML (default: SIM_SCENARIO or built-in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
