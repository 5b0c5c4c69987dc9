package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
)

func newTemplateCmd() *cobra.Command {
	var (
		out  string
		xlsx bool
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Gera o arquivo modelo de importação de clientes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = "modelo_clientes.csv"
				if xlsx {
					out = "modelo_clientes.xlsx"
				}
			}
			if strings.EqualFold(filepath.Ext(out), ".xlsx") {
				xlsx = true
			}

			write := clientimport.WriteTemplateCSV
			if xlsx {
				write = clientimport.WriteTemplateXLSX
			}
			if err := writeTemplateFile(out, write); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Modelo gravado em %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Arquivo de saída (padrão modelo_clientes.csv)")
	cmd.Flags().BoolVar(&xlsx, "xlsx", false, "Gera o modelo em Excel")
	return cmd
}

// writeTemplateFile grava o modelo em path. Em caso de falha, inclusive no
// Close, o arquivo parcial é removido.
func writeTemplateFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return withCode(exitFailure, fmt.Errorf("falha ao criar '%s': %w", path, err))
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = withCode(exitFailure, fmt.Errorf("falha ao fechar '%s': %w", path, cerr))
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()
	return write(f)
}
