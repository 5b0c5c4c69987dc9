package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/clientimport"
)

type importOptions struct {
	account   string
	file      string
	dryRun    bool
	report    string
	actor     string
	jsonOut   bool
	accountID uuid.UUID
}

func newImportCmd(root *rootOptions) *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Lê um CSV de clientes, mostra a prévia e grava os registros válidos",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(strings.TrimSpace(opts.account))
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("--account inválido: %w", err))
			}
			opts.accountID = id
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.account, "account", "", "UUID da conta (obrigatório)")
	cmd.Flags().StringVar(&opts.file, "file", "", "Arquivo .csv a importar (obrigatório)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Apenas mostra a prévia, sem gravar")
	cmd.Flags().StringVar(&opts.report, "report", "", "Grava a prévia em .csv ou .xlsx")
	cmd.Flags().StringVar(&opts.actor, "actor", "", "Usuário responsável (auditoria)")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Saída em JSON")

	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

type importResult struct {
	FileName string                      `json:"file_name"`
	Columns  map[string]int              `json:"columns"`
	Summary  clientimport.Summary        `json:"summary"`
	Invalid  []string                    `json:"invalid,omitempty"`
	Report   string                      `json:"report,omitempty"`
	Outcome  *clientimport.ImportOutcome `json:"outcome,omitempty"`
}

func runImport(cmd *cobra.Command, root *rootOptions, opts importOptions) error {
	app, err := bootstrap(root.envPath)
	if err != nil {
		return err
	}
	defer app.close()

	ctx := cmd.Context()
	session, err := app.imports.OpenFile(ctx, opts.file, opts.accountID)
	if err != nil {
		return err
	}

	result := importResult{
		FileName: session.FileName,
		Columns:  session.Columns.Mapping(),
		Summary:  session.Summary(),
	}
	for _, rec := range session.Records {
		if !rec.IsValid {
			result.Invalid = append(result.Invalid, fmt.Sprintf("Linha %d: %s", rec.Line, rec.ErrorSummary))
		}
	}

	if opts.report != "" {
		path, err := app.imports.ExportReport(session, opts.report)
		if err != nil {
			return err
		}
		result.Report = path
	}

	var importErr error
	if !opts.dryRun {
		outcome, err := app.imports.Confirm(ctx, session, opts.actor)
		result.Outcome = &outcome
		importErr = err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
	} else {
		printImportResult(cmd.OutOrStdout(), result)
	}
	return importErr
}

func printImportResult(w io.Writer, r importResult) {
	fmt.Fprintf(w, "Arquivo: %s\n", r.FileName)

	names := make([]string, 0, len(r.Columns))
	for name := range r.Columns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return r.Columns[names[i]] < r.Columns[names[j]] })
	cols := make([]string, len(names))
	for i, name := range names {
		cols[i] = fmt.Sprintf("%s=%d", name, r.Columns[name])
	}
	fmt.Fprintf(w, "Colunas: %s\n", strings.Join(cols, ", "))
	fmt.Fprintf(w, "Linhas: %d (%d válidas, %d inválidas, %s%% válidas)\n",
		r.Summary.Total, r.Summary.Valid, r.Summary.Invalid, r.Summary.ValidPercent.String())
	for _, line := range r.Invalid {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if r.Report != "" {
		fmt.Fprintf(w, "Relatório: %s\n", r.Report)
	}
	if r.Outcome == nil {
		fmt.Fprintln(w, "Simulação: nada foi gravado.")
		return
	}
	fmt.Fprintf(w, "Importados: %d, com erro: %d\n", r.Outcome.ImportedCount, r.Outcome.FailedCount)
}
