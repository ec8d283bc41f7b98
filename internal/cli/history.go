package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempslabs/errtrack/internal/ledger"
)

var (
	historyLedger string
	historyLimit  int
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyLedger, "ledger", "", "Delivery ledger database path (required)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum entries to show")
	historyCmd.MarkFlagRequired("ledger")
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent relay deliveries",
	RunE: func(cmd *cobra.Command, args []string) error {
		led, err := ledger.Open(historyLedger)
		if err != nil {
			return err
		}
		defer led.Close()

		deliveries, err := led.Recent(historyLimit)
		if err != nil {
			return err
		}
		if len(deliveries) == 0 {
			fmt.Println("no deliveries recorded")
			return nil
		}
		for _, d := range deliveries {
			fmt.Printf("%s  %s  %s\n", d.DeliveredAt.Format(time.RFC3339), d.EventID, d.Target)
		}
		return nil
	},
}
