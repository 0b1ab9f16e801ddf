package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BrunoViet/swapdesk/internal/client"
	"github.com/BrunoViet/swapdesk/internal/format"
	"github.com/BrunoViet/swapdesk/internal/swap"
	"github.com/spf13/cobra"
)

var (
	swapFrom    string
	swapTo      string
	swapAmount  string
	swapMax     bool
	swapSession string
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Execute one swap through the session API",
	Example: "  swapdesk swap --from BTC --to USDT --amount 0.5\n" +
		"  swapdesk swap --server http://localhost:8888 --session <id> --from ETH --to BTC --max",
	RunE: func(cmd *cobra.Command, args []string) error {
		if swapAmount == "" && !swapMax {
			return errors.New("one of --amount or --max is required")
		}
		ctx := cmd.Context()

		apiAddr, stop, err := apiAddress(ctx, remoteServer(cmd))
		if err != nil {
			return err
		}
		defer stop()
		c := client.New(apiAddr)

		id := swapSession
		if id == "" {
			v, err := c.CreateSession(ctx)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			id = v.SessionID
		}

		if _, err := c.SelectSource(ctx, id, strings.ToUpper(swapFrom)); err != nil {
			return fmt.Errorf("select %s: %w", swapFrom, err)
		}
		if _, err := c.SelectDestination(ctx, id, strings.ToUpper(swapTo)); err != nil {
			return fmt.Errorf("select %s: %w", swapTo, err)
		}
		var view *swap.View
		if swapMax {
			view, err = c.SetMax(ctx, id)
		} else {
			view, err = c.EditAmount(ctx, id, swapAmount)
		}
		if err != nil {
			return fmt.Errorf("set amount: %w", err)
		}
		if view.RateLabel != "" {
			fmt.Printf("  Quote:   %s\n", view.RateLabel)
		}

		res, err := c.Submit(ctx, id)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
				for _, f := range apiErr.Fields {
					fmt.Printf("  %-18s %s\n", f.Field+":", f.Message)
				}
			}
			return err
		}

		printReceipt(res.Receipt)
		fmt.Printf("\n  Session: %s\n", id)
		return nil
	},
}

func printReceipt(r swap.Receipt) {
	fmt.Println()
	fmt.Println(center("SWAP CONFIRMED", 44))
	fmt.Println(center(strings.Repeat("=", 16), 44))
	fmt.Printf("  You sent:      %s %s\n", r.SourceAmount, r.SourceSymbol)
	fmt.Printf("  You received:  %s %s\n", r.DestinationAmount, r.DestinationSymbol)
	if r.Rate > 0 {
		fmt.Printf("  Rate:          %s\n", format.RateLabel(r.SourceSymbol, r.DestinationSymbol, r.Rate))
	}
	fmt.Printf("  Receipt:       %s\n", r.ID)
	fmt.Printf("  Executed:      %s\n", r.ExecutedAt.Local().Format("2006-01-02 15:04:05"))
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func init() {
	f := swapCmd.Flags()
	f.StringVar(&swapFrom, "from", "", "Source asset symbol")
	f.StringVar(&swapTo, "to", "", "Destination asset symbol")
	f.StringVar(&swapAmount, "amount", "", "Amount of the source asset")
	f.BoolVar(&swapMax, "max", false, "Swap the whole source balance")
	f.StringVar(&swapSession, "session", "", "Existing session id (requires --server)")
	_ = swapCmd.MarkFlagRequired("from")
	_ = swapCmd.MarkFlagRequired("to")
	swapCmd.MarkFlagsMutuallyExclusive("amount", "max")
	rootCmd.AddCommand(swapCmd)
}
