package grants

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

const DefaultReferencePrefix = "GRT"

// ReferenceCode arma PREFIX-{last4}{DDMMYYYY}-T{threshold}-R{roll}-{S|F}.
// last4 son los últimos cuatro alfanuméricos del holder en mayúsculas, con relleno "0" a la izquierda.
func ReferenceCode(prefix, holderID string, at time.Time, threshold, roll int) string {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}

	letter := "F"
	if OutcomeFor(threshold, roll) == OutcomeSuccess {
		letter = "S"
	}

	return fmt.Sprintf("%s-%s%s-T%d-R%d-%s",
		prefix,
		holderSuffix(holderID),
		at.UTC().Format("02012006"),
		threshold,
		roll,
		letter,
	)
}

func holderSuffix(holderID string) string {
	var b []rune
	for _, r := range holderID {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b = append(b, unicode.ToUpper(r))
		}
	}
	if len(b) > 4 {
		b = b[len(b)-4:]
	}
	return strings.Repeat("0", 4-len(b)) + string(b)
}
