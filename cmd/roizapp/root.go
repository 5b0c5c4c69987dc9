package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors"
)

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitDB         = 4
	exitDBWrite    = 5
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// exitCode escolhe o código de saída pelo erro: código explícito primeiro, depois o sentinela.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	switch {
	case errors.Is(err, appErrors.ErrDataImport):
		return exitDBWrite
	case errors.Is(err, appErrors.ErrDatabase):
		return exitDB
	case errors.Is(err, appErrors.ErrValidation),
		errors.Is(err, appErrors.ErrInvalidInput):
		return exitValidation
	case errors.Is(err, appErrors.ErrConfiguration):
		return exitUsage
	}
	return exitFailure
}

type rootOptions struct {
	envPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "roizapp",
		Short:         "ROY zAPP: importação de clientes a partir de CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envPath, "env", ".env", "Arquivo .env com as configurações")

	cmd.AddCommand(newImportCmd(opts))
	cmd.AddCommand(newTemplateCmd())
	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newServeCmd(opts))
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCode(err))
	}
}
