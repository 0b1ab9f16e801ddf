package cmd

import (
	"fmt"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/ledger"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List open sessions on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(cfg.Server)
		ids, err := c.ListSessions(cmd.Context())
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No open sessions.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var balancesCmd = &cobra.Command{
	Use:   "balances <session-id>",
	Short: "Show a session's balances with USD values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := client.New(cfg.Server)

		holdings, err := c.Balances(ctx, args[0])
		if err != nil {
			return err
		}
		table, err := c.Prices(ctx)
		if err != nil {
			return err
		}
		printBalances(holdings, table)
		return nil
	},
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history <session-id>",
	Short: "Show a session's confirmed swaps and per-asset volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := client.New(cfg.Server)

		receipts, err := c.Swaps(ctx, args[0], historyLimit)
		if err != nil {
			return err
		}
		volume, err := c.Volume(ctx, args[0])
		if err != nil {
			return err
		}

		w := 72
		fmt.Println()
		fmt.Println(center("SWAP HISTORY", w))
		fmt.Println(center(strings.Repeat("=", 20), w))
		fmt.Println()
		if len(receipts) == 0 {
			fmt.Println("  No swaps yet.")
			return nil
		}
		fmt.Printf("  %-19s %24s  %24s\n", "TIME", "SENT", "RECEIVED")
		for _, r := range receipts {
			fmt.Printf("  %-19s %24s  %24s\n",
				r.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
				r.SourceAmount+" "+r.SourceSymbol,
				r.DestinationAmount+" "+r.DestinationSymbol)
		}

		fmt.Println()
		fmt.Printf("  %-8s %18s %18s %18s %6s\n", "ASSET", "DEBITED", "CREDITED", "NET", "SWAPS")
		fmt.Printf("  %s\n", strings.Repeat("─", w-4))
		for _, vol := range volume {
			fmt.Printf("  %-8s %18s %18s %18s %6d\n", vol.Symbol,
				format.AssetAmount(vol.Debited, format.DefaultMaxDecimals),
				format.AssetAmount(vol.Credited, format.DefaultMaxDecimals),
				formatSigned(vol.Net()),
				vol.Swaps)
		}
		return nil
	},
}

func printBalances(holdings []ledger.Holding, table map[string]float64) {
	w := 60
	fmt.Println()
	fmt.Println(center("BALANCES", w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()

	var total float64
	unpriced := 0
	for _, h := range holdings {
		fiat := "-"
		if price, ok := table[h.Symbol]; ok {
			v := h.Balance * price
			total += v
			if s, ok := format.FiatValue(&v); ok {
				fiat = s
			}
		} else if h.Balance > 0 {
			unpriced++
		}
		fmt.Printf("  %-8s %26s %22s\n", h.Symbol, format.AssetAmount(h.Balance, format.DefaultMaxDecimals), fiat)
	}
	fmt.Printf("%*s%s\n", w-15, "", "─────────────")
	totalLabel := "-"
	if s, ok := format.FiatValue(&total); ok {
		totalLabel = s
	}
	fmt.Printf("  %-*s%22s\n", w-24, "Total", totalLabel)
	if unpriced > 0 {
		fmt.Printf("\n  %d holdings without a price are excluded\n", unpriced)
	}
}

func formatSigned(v float64) string {
	if v < 0 {
		return "(" + format.AssetAmount(-v, format.DefaultMaxDecimals) + ")"
	}
	return format.AssetAmount(v, format.DefaultMaxDecimals)
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum swaps to show")
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(historyCmd)
}
