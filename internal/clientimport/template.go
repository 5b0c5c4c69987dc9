package clientimport

import (
	"io"

	"github.com/Dukorsa/ROYZAPP_CLIENTES_GO/internal/utils"
)

// TemplateHeaders são as 16 colunas do modelo de importação, em português.
var TemplateHeaders = []string{
	"nome", "telefone", "email", "cpf", "cnpj", "data_nascimento", "empresa", "tags",
	"status", "cep", "rua", "numero", "bairro", "cidade", "estado", "observacoes",
}

// TemplateRows são as linhas de exemplo do modelo; ambas são válidas.
var TemplateRows = [][]string{
	{"João Silva", "+5511999999999", "joao@email.com", "12345678901", "", "15/03/1985", "Empresa ABC",
		"vip|novo", "ativo", "01310-100", "Av. Paulista", "1000", "Bela Vista", "São Paulo", "SP", "Cliente desde 2020"},
	{"Maria Santos", "+5521988888888", "maria@email.com", "", "12345678000190", "1990-07-22", "Santos Comércio",
		"novo", "prospecto", "20040-020", "Rua da Assembleia", "10", "Centro", "Rio de Janeiro", "RJ", ""},
}

const templateSheetName = "Modelo"

func templateInput() (*utils.SliceDataInput, error) {
	data := make([][]string, 0, len(TemplateRows)+1)
	data = append(data, TemplateHeaders)
	data = append(data, TemplateRows...)
	return utils.NewSliceDataInput(data, templateSheetName)
}

// WriteTemplateCSV escreve o modelo em CSV separado por vírgula, UTF-8 com BOM.
func WriteTemplateCSV(w io.Writer) error {
	input, err := templateInput()
	if err != nil {
		return err
	}
	return utils.WriteCSV(w, input, &utils.ExportOptions{Comma: ',', WithBOM: true})
}

// WriteTemplateXLSX escreve o mesmo modelo como planilha .xlsx.
func WriteTemplateXLSX(w io.Writer) error {
	input, err := templateInput()
	if err != nil {
		return err
	}
	return utils.WriteXLSX(w, []utils.DataInput{input}, nil)
}
