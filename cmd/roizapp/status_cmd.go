package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Mostra a última importação de clientes da conta",
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := uuid.Parse(strings.TrimSpace(account))
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("--account inválido: %w", err))
			}

			app, err := bootstrap(root.envPath)
			if err != nil {
				return err
			}
			defer app.close()

			status, err := app.imports.GetImportStatus(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "UUID da conta (obrigatório)")
	_ = cmd.MarkFlagRequired("account")
	return cmd
}
