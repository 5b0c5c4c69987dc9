package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2" // Para XLSX

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core"                  // Para Config (ExportDir)
	appErrors "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/errors" // Para ErrExport
	appLogger "github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/core/logger"
)

// DataInput abstrai a fonte dos dados de exportação.
type DataInput interface {
	Headers() ([]string, error) // Retorna os cabeçalhos das colunas
	Rows() ([][]string, error)  // Retorna todas as linhas de dados
	RowCount() (int, error)     // Número de linhas de dados (sem cabeçalho)
	GetSheetName() string       // Nome da planilha (para Excel com múltiplas abas)
}

// SliceDataInput é uma implementação de DataInput para um `[][]string`.
type SliceDataInput struct {
	data      [][]string
	sheetName string
}

// NewSliceDataInput cria um DataInput a partir de um slice de slices de string.
// A primeira linha é considerada o cabeçalho.
func NewSliceDataInput(data [][]string, sheetName string) (*SliceDataInput, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: nenhum dado fornecido para SliceDataInput", appErrors.ErrInvalidInput)
	}
	if sheetName == "" {
		sheetName = "Dados"
	}
	return &SliceDataInput{data: data, sheetName: sheetName}, nil
}

func (s *SliceDataInput) Headers() ([]string, error) { return s.data[0], nil }

func (s *SliceDataInput) Rows() ([][]string, error) {
	if len(s.data) <= 1 {
		return [][]string{}, nil
	}
	return s.data[1:], nil
}

func (s *SliceDataInput) RowCount() (int, error) { return len(s.data) - 1, nil }
func (s *SliceDataInput) GetSheetName() string    { return s.sheetName }

// --- Sanitização ---
var (
	cpfRegex   = regexp.MustCompile(`\b(\d{3}[.-]?\d{3}[.-]?\d{3}-?\d{2})\b`)
	cnpjRegex  = regexp.MustCompile(`\b(\d{2}[.-]?\d{3}[.-]?\d{3}/?\d{4}-?\d{2})\b`)
	emailRegex = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
)

// SanitizeString mascara CPF, CNPJ e e-mail presentes no texto.
func SanitizeString(s string) string {
	// CNPJ antes do CPF: os 11 primeiros dígitos de um CNPJ não são CPF.
	s = cnpjRegex.ReplaceAllString(s, "**.***.***/****-**")
	s = cpfRegex.ReplaceAllString(s, "***.***.***-**")
	s = emailRegex.ReplaceAllString(s, "****@****.***")
	return s
}

func sanitizeData(headers []string, rows [][]string, sanitizeColumns []string) [][]string {
	if len(sanitizeColumns) == 0 || len(rows) == 0 {
		return rows
	}

	colIndicesToSanitize := make(map[int]bool)
	for _, colName := range sanitizeColumns {
		found := false
		for i, h := range headers {
			if strings.EqualFold(h, colName) {
				colIndicesToSanitize[i] = true
				found = true
				break
			}
		}
		if !found {
			appLogger.Warnf("Coluna de sanitização '%s' não encontrada nos cabeçalhos. Ignorando.", colName)
		}
	}
	if len(colIndicesToSanitize) == 0 {
		return rows
	}

	sanitizedRows := make([][]string, len(rows))
	for i, row := range rows {
		newRow := make([]string, len(row))
		copy(newRow, row)
		for colIdx := range row {
			if colIndicesToSanitize[colIdx] {
				newRow[colIdx] = SanitizeString(row[colIdx])
			}
		}
		sanitizedRows[i] = newRow
	}
	return sanitizedRows
}

// ExportOptions contém opções para a exportação.
type ExportOptions struct {
	CreateBackup    bool
	Sanitize        bool
	SanitizeColumns []string // Nomes das colunas a serem sanitizadas
	// Para CSV:
	Comma   rune // padrão ';'
	WithBOM bool // prefixa o BOM UTF-8 (Excel no Windows reconhece os acentos)
}

// WriteCSV escreve os dados em w.
func WriteCSV(w io.Writer, input DataInput, opts *ExportOptions) error {
	if opts == nil {
		opts = &ExportOptions{}
	}
	if opts.WithBOM {
		if _, err := io.WriteString(w, "\ufeff"); err != nil {
			return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao escrever BOM")
		}
	}

	writer := csv.NewWriter(w)
	writer.Comma = ';'
	if opts.Comma != 0 {
		writer.Comma = opts.Comma
	}

	headers, err := input.Headers()
	if err != nil {
		return err
	}
	if err := writer.Write(headers); err != nil {
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao escrever cabeçalhos CSV")
	}

	rows, err := input.Rows()
	if err != nil {
		return err
	}
	if opts.Sanitize {
		rows = sanitizeData(headers, rows, opts.SanitizeColumns)
	}

	if err := writer.WriteAll(rows); err != nil {
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao escrever linhas CSV")
	}
	return nil
}

// ExportToCSV exporta dados para um arquivo CSV dentro de cfg.ExportDir
// (quando outputPath é relativo).
func ExportToCSV(input DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	finalPath := resolveOutputPath(outputPath, cfg.ExportDir, ".csv")

	if opts != nil && opts.CreateBackup && fileExists(finalPath) {
		if err := createBackup(finalPath); err != nil {
			return "", appErrors.WrapErrorf(err, "falha ao criar backup para CSV")
		}
	}

	if err := writeExportFile(finalPath, func(w io.Writer) error { return WriteCSV(w, input, opts) }); err != nil {
		return "", err
	}
	appLogger.Infof("Dados exportados para CSV: %s", finalPath)
	return finalPath, nil
}

// WriteXLSX monta uma pasta de trabalho (uma aba por input) e a escreve em w.
func WriteXLSX(w io.Writer, inputs []DataInput, opts *ExportOptions) error {
	if opts == nil {
		opts = &ExportOptions{}
	}

	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			appLogger.Errorf("Erro ao fechar arquivo XLSX: %v", err)
		}
	}()

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11, Family: "Segoe UI"},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "FFFFFF", Style: 1},
		},
	})
	if err != nil {
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao criar estilo do cabeçalho")
	}

	for i, input := range inputs {
		sheetName := input.GetSheetName()
		if sheetName == "" {
			sheetName = fmt.Sprintf("Planilha%d", i+1)
		}
		// Excelize cria "Sheet1" por padrão; a primeira aba apenas a renomeia.
		if i == 0 {
			if err := xlsx.SetSheetName("Sheet1", sheetName); err != nil {
				return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao renomear planilha")
			}
		} else if _, err := xlsx.NewSheet(sheetName); err != nil {
			return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao criar nova planilha '%s'", sheetName)
		}

		headers, err := input.Headers()
		if err != nil {
			return err
		}
		for colIdx, headerVal := range headers {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
			_ = xlsx.SetCellValue(sheetName, cell, headerVal)
			_ = xlsx.SetCellStyle(sheetName, cell, cell, headerStyle)
		}

		rows, err := input.Rows()
		if err != nil {
			return err
		}
		if opts.Sanitize {
			rows = sanitizeData(headers, rows, opts.SanitizeColumns)
		}

		// Tudo vai como texto: telefone E.164, CPF e CEP perdem o '+' e zeros à esquerda como número.
		for rowIdx, rowData := range rows {
			for colIdx, cellData := range rowData {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				_ = xlsx.SetCellStr(sheetName, cell, cellData)
			}
		}

		if len(headers) > 0 {
			lastCol, _ := excelize.ColumnNumberToName(len(headers))
			_ = xlsx.SetColWidth(sheetName, "A", lastCol, 20)
		}
	}
	if len(inputs) == 0 {
		_ = xlsx.SetCellValue("Sheet1", "A1", "Nenhum dado para exportar.")
	}

	if err := xlsx.Write(w); err != nil {
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao escrever XLSX")
	}
	return nil
}

// ExportToXLSX exporta dados para um arquivo XLSX (Excel).
func ExportToXLSX(inputs []DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	finalPath := resolveOutputPath(outputPath, cfg.ExportDir, ".xlsx")

	if opts != nil && opts.CreateBackup && fileExists(finalPath) {
		if err := createBackup(finalPath); err != nil {
			return "", appErrors.WrapErrorf(err, "falha ao criar backup para XLSX")
		}
	}

	if err := writeExportFile(finalPath, func(w io.Writer) error { return WriteXLSX(w, inputs, opts) }); err != nil {
		return "", err
	}
	appLogger.Infof("Dados exportados para XLSX: %s", finalPath)
	return finalPath, nil
}

// --- Funções Utilitárias Internas ---

// writeExportFile cria path e grava nele com write. Se a escrita ou o Close
// falharem, o arquivo parcial é removido.
func writeExportFile(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, err), "falha ao criar arquivo '%s'", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = appErrors.WrapErrorf(fmt.Errorf("%w: %v", appErrors.ErrExport, cerr), "falha ao fechar arquivo '%s'", path)
		}
		if err != nil {
			if rerr := os.Remove(path); rerr != nil {
				appLogger.Warnf("Não foi possível remover exportação parcial '%s': %v", path, rerr)
			}
		}
	}()
	return write(file)
}

func resolveOutputPath(path string, defaultDir string, defaultExt string) string {
	p := filepath.Clean(path)
	if !filepath.IsAbs(p) {
		absDefaultDir, _ := filepath.Abs(defaultDir)
		p = filepath.Join(absDefaultDir, p)
	}

	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		appLogger.Warnf("Não foi possível criar diretório de exportação '%s': %v. Usando diretório atual.", dir, err)
		p = filepath.Base(p)
	}

	if filepath.Ext(p) == "" {
		p += defaultExt
	}
	return p
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

func createBackup(path string) error {
	timestamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s_backup_%s%s", base, timestamp, ext)

	err := os.Rename(path, backupPath)
	if err == nil {
		appLogger.Infof("Backup criado: %s", backupPath)
	}
	return err
}
