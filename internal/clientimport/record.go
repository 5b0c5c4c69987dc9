package clientimport

import "strings"

// CandidateRecord é uma linha do arquivo já normalizada, ainda não persistida.
// Campos opcionais nil foram omitidos (vazios ou em formato não reconhecido).
type CandidateRecord struct {
	Line int `json:"line"` // linha no arquivo, base 1

	FullName  string `json:"full_name"`
	PhoneRaw  string `json:"phone_raw"`
	PhoneE164 string `json:"phone_e164"`

	Email        *string  `json:"email,omitempty"`
	CPF          *string  `json:"cpf,omitempty"`
	CNPJ         *string  `json:"cnpj,omitempty"`
	BirthDate    *string  `json:"birth_date,omitempty"`
	CompanyName  *string  `json:"company_name,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Status       *Status  `json:"status,omitempty"`
	Zip          *string  `json:"zip_code,omitempty"`
	Street       *string  `json:"street,omitempty"`
	StreetNumber *string  `json:"street_number,omitempty"`
	Neighborhood *string  `json:"neighborhood,omitempty"`
	City         *string  `json:"city,omitempty"`
	State        *string  `json:"state,omitempty"`
	Notes        *string  `json:"notes,omitempty"`

	IsValid      bool   `json:"is_valid"`
	ErrorSummary string `json:"error_summary,omitempty"`
}

// buildRecord aplica os normalizadores às células de uma linha.
func buildRecord(line int, cells []string, cm ColumnMap) CandidateRecord {
	rec := CandidateRecord{
		Line:     line,
		FullName: strings.TrimSpace(cm.cell(cells, FieldName)),
		PhoneRaw: strings.TrimSpace(cm.cell(cells, FieldPhone)),
	}
	rec.PhoneE164 = FormatPhoneE164(rec.PhoneRaw)

	if v, ok := ParseEmail(cm.cell(cells, FieldEmail)); ok {
		rec.Email = &v
	}
	if v, ok := ParseCPF(cm.cell(cells, FieldCPF)); ok {
		rec.CPF = &v
	}
	if v, ok := ParseCNPJ(cm.cell(cells, FieldCNPJ)); ok {
		rec.CNPJ = &v
	}
	if v, ok := ParseDate(cm.cell(cells, FieldBirthDate)); ok {
		rec.BirthDate = &v
	}
	if v, ok := ParseStatus(cm.cell(cells, FieldStatus)); ok {
		rec.Status = &v
	}
	rec.Tags = ParseTags(cm.cell(cells, FieldTags))

	rec.CompanyName = optionalText(cm.cell(cells, FieldCompanyName))
	rec.Zip = optionalText(cm.cell(cells, FieldZip))
	rec.Street = optionalText(cm.cell(cells, FieldStreet))
	rec.StreetNumber = optionalText(cm.cell(cells, FieldStreetNumber))
	rec.Neighborhood = optionalText(cm.cell(cells, FieldNeighborhood))
	rec.City = optionalText(cm.cell(cells, FieldCity))
	rec.Notes = optionalText(cm.cell(cells, FieldNotes))
	if state := optionalText(cm.cell(cells, FieldState)); state != nil {
		upper := strings.ToUpper(*state)
		rec.State = &upper
	}

	Validate(&rec)
	return rec
}

