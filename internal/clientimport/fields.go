// Package clientimport converte o texto de um arquivo CSV de contatos em
// registros candidatos validados e os importa em lote para uma conta.
package clientimport

// Field é o nome lógico de uma coluna reconhecida no cabeçalho.
type Field string

const (
	FieldName         Field = "name"
	FieldPhone        Field = "phone"
	FieldEmail        Field = "email"
	FieldCPF          Field = "taxId_cpf"
	FieldCNPJ         Field = "taxId_cnpj"
	FieldBirthDate    Field = "birthDate"
	FieldCompanyName  Field = "companyName"
	FieldTags         Field = "tags"
	FieldStatus       Field = "status"
	FieldZip          Field = "zip"
	FieldStreet       Field = "street"
	FieldStreetNumber Field = "streetNumber"
	FieldNeighborhood Field = "neighborhood"
	FieldCity         Field = "city"
	FieldState        Field = "state"
	FieldNotes        Field = "notes"
)

// RequiredFields precisam estar no cabeçalho, senão o arquivo inteiro é rejeitado.
var RequiredFields = []Field{FieldName, FieldPhone}

// fieldOrder decide o desempate quando uma célula casa com mais de um campo
// por substring. Campos mais específicos vêm antes dos genéricos
// ("nome da empresa" é empresa, "número da rua" é número).
var fieldOrder = []Field{
	FieldCompanyName,
	FieldBirthDate,
	FieldEmail,
	FieldPhone,
	FieldCPF,
	FieldCNPJ,
	FieldStreetNumber,
	FieldStreet,
	FieldNeighborhood,
	FieldZip,
	FieldCity,
	FieldState,
	FieldStatus,
	FieldTags,
	FieldNotes,
	FieldName,
}

// fieldSynonyms lista os nomes de coluna aceitos (português primeiro), já em minúsculas.
var fieldSynonyms = map[Field][]string{
	FieldName:         {"nome", "name", "full_name", "nome completo"},
	FieldPhone:        {"telefone", "phone", "phone_e164", "celular", "whatsapp"},
	FieldEmail:        {"email", "e-mail", "email principal"},
	FieldCPF:          {"cpf"},
	FieldCNPJ:         {"cnpj"},
	FieldBirthDate:    {"nascimento", "data_nascimento", "birth_date", "aniversário", "aniversario", "data de nascimento"},
	FieldCompanyName:  {"empresa", "company", "company_name", "razão social", "razao social"},
	FieldTags:         {"tags", "etiquetas", "categorias"},
	FieldStatus:       {"status", "situação", "situacao"},
	FieldZip:          {"cep", "zip", "zip_code", "código postal"},
	FieldStreet:       {"rua", "street", "logradouro", "endereço", "endereco"},
	FieldStreetNumber: {"número", "numero", "street_number", "nº"},
	FieldNeighborhood: {"bairro", "neighborhood"},
	FieldCity:         {"cidade", "city"},
	FieldState:        {"estado", "state", "uf"},
	FieldNotes:        {"observações", "observacoes", "notes", "notas", "anotações"},
}

// fieldLabels são os nomes exibidos ao usuário nas mensagens de erro.
var fieldLabels = map[Field]string{
	FieldName:  "nome",
	FieldPhone: "telefone",
}

func (f Field) label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}

// Status é a situação comercial do cliente.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusProspect Status = "prospect"
	StatusChurned  Status = "churned"
	StatusPaused   Status = "paused"
)

var statusSynonyms = map[string]Status{
	"ativo":     StatusActive,
	"inativo":   StatusInactive,
	"prospecto": StatusProspect,
	"churn":     StatusChurned,
	"cancelado": StatusChurned,
	"pausado":   StatusPaused,
}

var canonicalStatuses = map[Status]bool{
	StatusActive:   true,
	StatusInactive: true,
	StatusProspect: true,
	StatusChurned:  true,
	StatusPaused:   true,
}
