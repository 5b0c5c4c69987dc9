package clientimport

import "strings"

// Validate calcula IsValid e ErrorSummary. Só nome e telefone bloqueiam a linha;
// falhas de campos opcionais já viraram omissão nos normalizadores.
func Validate(rec *CandidateRecord) {
	var problems []string

	if strings.TrimSpace(rec.FullName) == "" {
		problems = append(problems, MsgNameEmpty)
	}
	if msg := ValidatePhoneE164(rec.PhoneE164); msg != "" {
		problems = append(problems, msg)
	}

	rec.IsValid = len(problems) == 0
	rec.ErrorSummary = strings.Join(problems, "; ")
}
