package cmd

import (
	"fmt"

	"github.com/BrunoViet/swapdesk/internal/asset"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/metrics"
	"github.com/spf13/cobra"
)

var pricesCmd = &cobra.Command{
	Use:   "prices",
	Short: "Fetch and print the current price table",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := newPriceAdapter(metrics.New("swapdesk")).FetchPrices(cmd.Context())
		catalog := asset.BuildCatalog(cfg.Assets.Symbols, table, cfg.Assets.IconBaseURL)

		fmt.Printf("  %-8s %-22s %18s\n", "SYMBOL", "NAME", "PRICE (USD)")
		fmt.Printf("  %-8s %-22s %18s\n", "------", "----", "-----------")
		missing := 0
		for _, a := range catalog {
			price := "-"
			if a.HasPrice() {
				price = format.AssetAmount(*a.Price, format.DefaultMaxDecimals)
			} else {
				missing++
			}
			fmt.Printf("  %-8s %-22s %18s\n", a.Symbol, truncate(a.Name, 22), price)
		}
		if missing == len(catalog) {
			fmt.Println("\n  [NO PRICES AVAILABLE]")
		} else if missing > 0 {
			fmt.Printf("\n  %d of %d assets unpriced\n", missing, len(catalog))
		}
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-2] + ".."
}

func init() {
	rootCmd.AddCommand(pricesCmd)
}
