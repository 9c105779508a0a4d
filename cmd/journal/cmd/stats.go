package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show journal statistics",
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show account balance and trade counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := apiClient().AccountStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Starting balance: %.2f\n", s.StartingBalance)
		fmt.Printf("Current balance:  %.2f\n", s.CurrentBalance)
		fmt.Printf("Total P&L:        %.2f (%.2f%%)\n", s.TotalPnL, s.PnLPercentage)
		fmt.Printf("Closed trades:    %d (%d winning, %d losing)\n",
			s.TotalTrades, s.WinningTrades, s.LosingTrades)
		fmt.Printf("Open trades:      %d\n", s.OpenTrades)
		return nil
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show performance ratios over closed trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := apiClient().Metrics(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Profit factor:      %.2f\n", m.ProfitFactor)
		fmt.Printf("Win rate:           %.1f%%\n", m.WinRate)
		fmt.Printf("Average win:        %.2f\n", m.AverageWin)
		fmt.Printf("Average loss:       %.2f\n", m.AverageLoss)
		fmt.Printf("Largest win:        %.2f\n", m.LargestWin)
		fmt.Printf("Largest loss:       %.2f\n", m.LargestLoss)
		fmt.Printf("Average confluence: %.1f\n", m.AverageConfluence)
		return nil
	},
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Show realized P&L per day",
	RunE: func(cmd *cobra.Command, args []string) error {
		days, err := apiClient().DailyStats(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tPNL")
		for _, d := range days {
			fmt.Fprintf(w, "%s\t%.2f\n", d.Date, d.PnL)
		}
		return w.Flush()
	},
}

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Show the summary for one calendar month",
	RunE: func(cmd *cobra.Command, args []string) error {
		year, _ := cmd.Flags().GetInt("year")
		month, _ := cmd.Flags().GetInt("month")

		s, err := apiClient().MonthlyStats(cmd.Context(), year, month)
		if err != nil {
			return err
		}

		fmt.Printf("%d-%02d: %.2f over %d trades on %d days (win rate %.1f%%)\n",
			s.Year, s.Month, s.TotalPnL, s.TotalTrades, s.TradingDays, s.WinRate)
		if s.BestDay.Date != nil {
			fmt.Printf("Best day:  %s (%.2f)\n", *s.BestDay.Date, s.BestDay.PnL)
		}
		if s.WorstDay.Date != nil {
			fmt.Printf("Worst day: %s (%.2f)\n", *s.WorstDay.Date, s.WorstDay.PnL)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tPNL\tTRADES")
		for _, d := range s.DailyData {
			fmt.Fprintf(w, "%s\t%.2f\t%d\n", d.Date, d.PnL, d.Trades)
		}
		return w.Flush()
	},
}

func init() {
	now := time.Now().UTC()
	monthlyCmd.Flags().Int("year", now.Year(), "year to summarize")
	monthlyCmd.Flags().Int("month", int(now.Month()), "month to summarize (1-12)")

	statsCmd.AddCommand(accountCmd, metricsCmd, dailyCmd, monthlyCmd)
	rootCmd.AddCommand(statsCmd)
}
