package clientimport

import (
	"fmt"
	"regexp"
	"strings"
)

const maxPhoneLength = 16 // '+' seguido de até 15 dígitos

var (
	phoneE164Regex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)
	emailRegex     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dayFirstRegex  = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})$`)
	yearFirstRegex = regexp.MustCompile(`^(\d{4})[/-](\d{1,2})[/-](\d{1,2})$`)
	tagSplitRegex  = regexp.MustCompile(`[;|]`)
)

// Mensagens de validação do telefone, exibidas na prévia da importação.
const (
	MsgNameEmpty          = "Nome vazio"
	MsgPhoneRequired      = "Telefone é obrigatório"
	MsgPhoneMissingPlus   = "Deve começar com +"
	MsgPhoneInvalidFormat = "Formato inválido. Ex: +5511999999999"
)

// FormatPhoneE164 canoniza um telefone para o formato E.164.
// Mantém só dígitos e '+', garante o '+' inicial, descarta '+' internos e
// corta em 16 caracteres. Entrada em branco devolve "".
// O resultado ainda precisa passar por IsValidPhoneE164.
func FormatPhoneE164(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	phone := "+" + digits.String()
	if len(phone) > maxPhoneLength {
		phone = phone[:maxPhoneLength]
	}
	return phone
}

// IsValidPhoneE164 informa se o valor já está em E.164.
func IsValidPhoneE164(phone string) bool {
	return phoneE164Regex.MatchString(phone)
}

// ValidatePhoneE164 devolve o motivo da falha, ou "" quando o telefone é válido.
func ValidatePhoneE164(phone string) string {
	switch {
	case strings.TrimSpace(phone) == "":
		return MsgPhoneRequired
	case !strings.HasPrefix(phone, "+"):
		return MsgPhoneMissingPlus
	case !IsValidPhoneE164(phone):
		return MsgPhoneInvalidFormat
	}
	return ""
}

// ParseDate aceita DD/MM/AAAA (ou DD-MM-AAAA) e AAAA-MM-DD (ou AAAA/MM/DD)
// e devolve AAAA-MM-DD com mês e dia com dois dígitos.
func ParseDate(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", false
	}
	if m := dayFirstRegex.FindStringSubmatch(value); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1])), true
	}
	if m := yearFirstRegex.FindStringSubmatch(value); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3])), true
	}
	return "", false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// ParseCPF devolve os 11 dígitos do CPF ou false.
func ParseCPF(raw string) (string, bool) {
	return digitsOfLength(raw, 11)
}

// ParseCNPJ devolve os 14 dígitos do CNPJ ou false.
func ParseCNPJ(raw string) (string, bool) {
	return digitsOfLength(raw, 14)
}

func digitsOfLength(raw string, n int) (string, bool) {
	digits := onlyDigits(raw)
	if len(digits) != n {
		return "", false
	}
	return digits, true
}

func onlyDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ParseTags separa a célula em ';' ou '|'. Nenhuma tag resulta em nil.
func ParseTags(raw string) []string {
	var tags []string
	for _, piece := range tagSplitRegex.Split(raw, -1) {
		if tag := strings.TrimSpace(piece); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// ParseStatus reconhece os sinônimos em português e os valores canônicos.
func ParseStatus(raw string) (Status, bool) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return "", false
	}
	if status, ok := statusSynonyms[value]; ok {
		return status, true
	}
	if canonicalStatuses[Status(value)] {
		return Status(value), true
	}
	return "", false
}

// ParseEmail aceita apenas o formato básico local@dominio.tld.
func ParseEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || !emailRegex.MatchString(email) {
		return "", false
	}
	return email, true
}

// optionalText trata texto livre: vazio após trim vira ausente.
func optionalText(raw string) *string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil
	}
	return &value
}
