package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tempslabs/errtrack/internal/transport"
)

func init() {
	rootCmd.AddCommand(checkDSNCmd)
}

var checkDSNCmd = &cobra.Command{
	Use:   "check-dsn <dsn>",
	Short: "Parse a DSN and print its components",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dsn, err := transport.ParseDSN(args[0])
		if err != nil {
			return err
		}
		out, _ := json.MarshalIndent(map[string]string{
			"protocol":   dsn.Protocol,
			"public_key": dsn.PublicKey,
			"host":       dsn.Host,
			"project_id": dsn.ProjectID,
			"store_url":  dsn.StoreURL(),
		}, "", "  ")
		fmt.Println(string(out))
		return nil
	},
}
