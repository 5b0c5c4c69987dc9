package utils

import (
	"regexp"
	"strings"
	"unicode"
)

// --- Validador para o responsável pela ação ---
var actorNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._@-]{3,100}$`)

// IsValidActorName valida o identificador de quem confirma uma importação
// (login ou e-mail, sem espaços).
func IsValidActorName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	return actorNameRegex.MatchString(name)
}

// --- Funções de Sanitização ---

// SanitizeInput remove caracteres de controle e junta sequências de espaços em um só.
// Para SQL, use SEMPRE queries parametrizadas.
func SanitizeInput(inputStr string) string {
	if inputStr == "" {
		return ""
	}
	var sb strings.Builder
	lastWasSpace := false
	for _, r := range inputStr {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			continue
		}
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				sb.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			sb.WriteRune(r)
			lastWasSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
