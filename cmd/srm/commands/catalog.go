package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/srm-sim/internal/catalog"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "공급사 카탈로그 출력",
	Long: `시나리오(또는 기본 카탈로그)의 공급사 조건을 출력합니다.
--reveal 은 게임 중에는 보이지 않는 실제 성능(신뢰도, 불량률 등)을 함께 보여줍니다.

Example:
  go run ./cmd/srm catalog
  go run ./cmd/srm catalog --reveal --scenario config/scenarios/baseline.yaml`,
	RunE: runCatalog,
}

var catalogReveal bool

func init() {
	rootCmd.AddCommand(catalogCmd)

	// Flags
	catalogCmd.Flags().BoolVar(&catalogReveal, "reveal", false, "show hidden supplier performance")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	env, err := loadSimEnv()
	if err != nil {
		return err
	}

	defs := env.suppliers()
	title := "Built-in supplier catalog"
	if defs == nil {
		defs = catalog.Defaults()
	} else {
		title = fmt.Sprintf("Scenario %s (%s)", env.scenario.Meta.ScenarioID, env.hash[:12])
	}

	// 카탈로그 검증 + 초기 가격/평판 세팅
	cat, err := catalog.New(defs)
	if err != nil {
		return err
	}

	printHeader(os.Stdout, title)
	printSuppliers(os.Stdout, cat.Snapshot(), catalogReveal)
	for _, s := range cat.Snapshot() {
		if s.Description != "" {
			fmt.Printf("  %s: %s\n", s.ID, s.Description)
		}
	}
	fmt.Println(doubleLine)
	return nil
}
