package clientimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Mode escolhe como as linhas são divididas em células.
type Mode string

const (
	// ModeCompat divide cada linha em ',' ou ';' sem tratar aspas.
	// Uma vírgula dentro de uma célula entre aspas quebra a célula.
	ModeCompat Mode = "compat"
	// ModeStrict usa encoding/csv: aspas e delimitadores dentro delas são respeitados.
	ModeStrict Mode = "strict"
)

// ParseMode converte o valor de configuração; vazio significa ModeCompat.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeCompat:
		return ModeCompat, nil
	case ModeStrict:
		return ModeStrict, nil
	}
	return "", fmt.Errorf("modo CSV desconhecido '%s'", s)
}

var compatSplitRegex = regexp.MustCompile(`[,;]`)

// ParseResult é o resultado da leitura de um arquivo inteiro.
type ParseResult struct {
	Columns ColumnMap
	Records []CandidateRecord
}

// rawRow é uma linha já dividida, com o número da linha de origem.
type rawRow struct {
	line  int
	cells []string
}

// Parse lê o texto completo (já decodificado em UTF-8), resolve o cabeçalho e
// produz um CandidateRecord validado por linha de dados. Linhas em branco são
// ignoradas. Falhas de arquivo devolvem resultado nil.
func Parse(text string, mode Mode) (*ParseResult, error) {
	text = strings.TrimPrefix(text, utf8BOM)

	var (
		rows []rawRow
		err  error
	)
	switch mode {
	case ModeStrict:
		rows, err = splitStrict(text)
	default:
		rows = splitCompat(text)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, ErrNotEnoughLines
	}

	columns := ResolveColumns(rows[0].cells)
	if missing := columns.Missing(); len(missing) > 0 {
		return nil, &MissingColumnsError{Fields: missing}
	}

	records := make([]CandidateRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, buildRecord(row.line, row.cells, columns))
	}
	return &ParseResult{Columns: columns, Records: records}, nil
}

func splitCompat(text string) []rawRow {
	lines := strings.Split(text, "\n")
	rows := make([]rawRow, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := compatSplitRegex.Split(line, -1)
		for j, c := range cells {
			cells[j] = dequote(strings.TrimSpace(c))
		}
		rows = append(rows, rawRow{line: i + 1, cells: cells})
	}
	return rows
}

func splitStrict(text string) ([]rawRow, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = detectDelimiter(text)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	var rows []rawRow
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, fmt.Errorf("%w (linha %d): %v", ErrMalformedFile, pe.Line, pe.Err)
			}
			return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
		}
		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}
		line, _ := r.FieldPos(0)
		for j, c := range record {
			record[j] = strings.TrimSpace(c)
		}
		rows = append(rows, rawRow{line: line, cells: record})
	}
	return rows, nil
}

// detectDelimiter olha só a primeira linha não vazia: ';' quando aparece mais que ','.
func detectDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			return ';'
		}
		return ','
	}
	return ','
}
