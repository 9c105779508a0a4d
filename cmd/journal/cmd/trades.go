package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"trading-journal-go/internal/client"
)

var tradeDraft client.TradeDraft

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all trades in the journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		trades, err := apiClient().ListTrades(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSYMBOL\tDIR\tENTRY\tEXIT\tLOTS\tSTATUS\tPNL\tCONFLUENCE")
		for _, t := range trades {
			exit := "-"
			if t.ExitPrice != nil {
				exit = strconv.FormatFloat(*t.ExitPrice, 'f', -1, 64)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%s\t%g\t%s\t%.2f\t%.1f\n",
				t.ID, t.Symbol, t.Direction, t.EntryPrice, exit, t.LotSize,
				t.Status, t.PnL, t.TotalConfluence)
		}
		return w.Flush()
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new trade",
	Example: `  journal add --symbol EURUSD --direction LONG --entry 1.1000 --lots 1.0
  journal add --symbol GBPUSD --direction SHORT --entry 1.2500 --exit 1.2450 --lots 0.5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("exit") {
			exit, err := cmd.Flags().GetFloat64("exit")
			if err != nil {
				return err
			}
			tradeDraft.ExitPrice = &exit
		}

		trade, err := apiClient().CreateTrade(cmd.Context(), tradeDraft)
		if err != nil {
			return err
		}
		fmt.Printf("Recorded trade %d (%s %s, status %s, pnl %.2f)\n",
			trade.ID, trade.Direction, trade.Symbol, trade.Status, trade.PnL)
		return nil
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <id> <exit-price>",
	Short: "Close an open trade at the given exit price",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid trade id %q", args[0])
		}
		exitPrice, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid exit price %q", args[1])
		}

		trade, err := apiClient().CloseTrade(cmd.Context(), uint(id), exitPrice)
		if err != nil {
			return err
		}
		fmt.Printf("Closed trade %d at %g, pnl %.2f\n", trade.ID, exitPrice, trade.PnL)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a trade from the journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid trade id %q", args[0])
		}
		if err := apiClient().DeleteTrade(cmd.Context(), uint(id)); err != nil {
			return err
		}
		fmt.Printf("Deleted trade %d\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&tradeDraft.Symbol, "symbol", "", "instrument symbol (required)")
	addCmd.Flags().StringVar(&tradeDraft.Direction, "direction", "", "LONG or SHORT (required)")
	addCmd.Flags().Float64Var(&tradeDraft.EntryPrice, "entry", 0, "entry price (required)")
	addCmd.Flags().Float64("exit", 0, "exit price (closes the trade immediately)")
	addCmd.Flags().Float64Var(&tradeDraft.LotSize, "lots", 0, "lot size (required)")
	addCmd.Flags().IntVar(&tradeDraft.WeeklyTF, "weekly", 0, "weekly timeframe confluence (0-100)")
	addCmd.Flags().IntVar(&tradeDraft.DailyTF, "daily", 0, "daily timeframe confluence (0-100)")
	addCmd.Flags().IntVar(&tradeDraft.H4TF, "h4", 0, "4-hour timeframe confluence (0-100)")
	addCmd.Flags().IntVar(&tradeDraft.H1TF, "h1", 0, "1-hour timeframe confluence (0-100)")
	addCmd.Flags().IntVar(&tradeDraft.LowerTF, "lower", 0, "lower timeframe confluence (0-100)")
	addCmd.Flags().StringVar(&tradeDraft.Notes, "notes", "", "free-text notes")
	_ = addCmd.MarkFlagRequired("symbol")
	_ = addCmd.MarkFlagRequired("direction")
	_ = addCmd.MarkFlagRequired("entry")
	_ = addCmd.MarkFlagRequired("lots")

	rootCmd.AddCommand(listCmd, addCmd, closeCmd, deleteCmd)
}
