package clientimport

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

const utf8BOM = "\ufeff"

// ColumnMap liga cada campo lógico ao índice (base zero) da coluna do cabeçalho.
// Campos sem coluna simplesmente não aparecem no mapa.
type ColumnMap struct {
	index map[Field]int
	owner map[int]Field
}

// sharedFields são pares que podem ler a mesma célula ("cpf/cnpj"): cada
// normalizador rejeita a quantidade de dígitos do outro.
var sharedFields = map[Field]Field{
	FieldCPF:  FieldCNPJ,
	FieldCNPJ: FieldCPF,
}

// ResolveColumns faz uma passada da esquerda para a direita pelo cabeçalho.
// Cada célula fica com no máximo um campo e cada campo com no máximo uma célula
// (a primeira que casar). Igualdade exata com um sinônimo vence uma ocorrência
// por substring; entre casamentos do mesmo tipo decide a ordem de fieldOrder.
//
// Depois da passada, um campo obrigatório ainda ausente fica com a primeira
// célula que contenha um de seus sinônimos, mesmo já tendo dono
// ("nome / razão social" serve de empresa e de nome). O mesmo vale para os
// pares de sharedFields.
func ResolveColumns(header []string) ColumnMap {
	m := ColumnMap{
		index: make(map[Field]int, len(fieldOrder)),
		owner: make(map[int]Field, len(header)),
	}

	cells := make([]string, len(header))
	for i, raw := range header {
		cells[i] = normalizeHeaderCell(raw)
		if cells[i] == "" {
			continue
		}
		if f, ok := m.match(cells[i]); ok {
			m.index[f] = i
			m.owner[i] = f
		}
	}

	for _, f := range RequiredFields {
		if _, ok := m.index[f]; ok {
			continue
		}
		if i, ok := firstContaining(cells, f); ok {
			m.index[f] = i
		}
	}
	for f, pair := range sharedFields {
		i, ok := m.index[pair]
		if _, has := m.index[f]; has || !ok || m.owner[i] != pair {
			continue
		}
		if containsSynonym(cells[i], f) {
			m.index[f] = i
		}
	}
	return m
}

func firstContaining(cells []string, f Field) (int, bool) {
	for i, cell := range cells {
		if cell != "" && containsSynonym(cell, f) {
			return i, true
		}
	}
	return 0, false
}

func containsSynonym(cell string, f Field) bool {
	for _, syn := range fieldSynonyms[f] {
		if strings.Contains(cell, syn) {
			return true
		}
	}
	return false
}

func (m ColumnMap) match(cell string) (Field, bool) {
	var partial Field
	found := false

	for _, f := range fieldOrder {
		if _, claimed := m.index[f]; claimed {
			continue
		}
		for _, syn := range fieldSynonyms[f] {
			if cell == syn {
				return f, true
			}
			if !found && strings.Contains(cell, syn) {
				partial = f
				found = true
			}
		}
	}
	return partial, found
}

// Index devolve a coluna do campo, ou false quando o cabeçalho não o tem.
func (m ColumnMap) Index(f Field) (int, bool) {
	i, ok := m.index[f]
	return i, ok
}

// FieldAt devolve o campo dono da coluna i na passada principal. Células
// compartilhadas continuam com o primeiro dono.
func (m ColumnMap) FieldAt(i int) (Field, bool) {
	f, ok := m.owner[i]
	return f, ok
}

// Missing lista os campos obrigatórios que não foram encontrados.
func (m ColumnMap) Missing() []Field {
	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := m.index[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Mapping devolve uma cópia campo -> coluna, usada na prévia.
func (m ColumnMap) Mapping() map[string]int {
	out := make(map[string]int, len(m.index))
	for f, i := range m.index {
		out[string(f)] = i
	}
	return out
}

// cell devolve o valor bruto da coluna do campo; linhas curtas dão "".
func (m ColumnMap) cell(cells []string, f Field) string {
	i, ok := m.index[f]
	if !ok || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func normalizeHeaderCell(raw string) string {
	cell := strings.TrimPrefix(raw, utf8BOM)
	cell = dequote(strings.TrimSpace(cell))
	return norm.NFC.String(strings.ToLower(strings.TrimSpace(cell)))
}

// dequote remove no máximo uma aspa dupla de cada ponta.
func dequote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
