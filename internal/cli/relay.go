package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tempslabs/errtrack/internal/ledger"
	"github.com/tempslabs/errtrack/internal/relay"
	"github.com/tempslabs/errtrack/internal/spool"
	"github.com/tempslabs/errtrack/internal/transport"
)

var (
	relayConfig   string
	relayDSN      string
	relaySpoolDir string
	relayLedger   string
	relayOnce     bool
)

func init() {
	rootCmd.AddCommand(relayCmd)
	relayCmd.Flags().StringVarP(&relayConfig, "config", "c", "", "Path to trackctl config YAML")
	relayCmd.Flags().StringVar(&relayDSN, "dsn", "", "DSN (overrides config file)")
	relayCmd.Flags().StringVar(&relaySpoolDir, "spool-dir", "", "Spool directory (overrides config file)")
	relayCmd.Flags().StringVar(&relayLedger, "ledger", "", "Delivery ledger database path (overrides config file)")
	relayCmd.Flags().BoolVar(&relayOnce, "once", false, "Sweep the spool once and exit")
}

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Forward spooled events to the store endpoint",
	Long: "Drains the spool directory through the HTTP transport, recording\n" +
		"deliveries in the ledger so no event id is forwarded twice.\n" +
		"Without --once, keeps watching the directory for new files.",
	RunE: runRelay,
}

func runRelay(cmd *cobra.Command, args []string) error {
	cfg, err := LoadConfig(relayConfig)
	if err != nil {
		return err
	}
	if relayDSN != "" {
		cfg.DSN = relayDSN
	}
	if relaySpoolDir != "" {
		cfg.SpoolDir = relaySpoolDir
	}
	if relayLedger != "" {
		cfg.LedgerPath = relayLedger
	}
	if cfg.DSN == "" {
		return fmt.Errorf("no DSN: pass --dsn or set dsn in the config file")
	}
	if cfg.SpoolDir == "" {
		return fmt.Errorf("no spool directory: pass --spool-dir or set spool_dir in the config file")
	}
	if cfg.LedgerPath == "" {
		cfg.LedgerPath = cfg.SpoolDir + "/deliveries.db"
	}

	dsn, err := transport.ParseDSN(cfg.DSN)
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	defer led.Close()

	r := relay.New(spool.New(cfg.SpoolDir), transport.NewHTTP(dsn, 0), led, dsn.StoreURL())

	if relayOnce {
		n, err := r.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("forwarded %d event(s)\n", n)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	fmt.Printf("relay: watching %s\n", cfg.SpoolDir)
	return r.Run(ctx)
}
