package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout     = "20060102"
	sequenceDigits = 4
)

// ValidPrefix acepta de 2 a 8 letras mayúsculas (el guion es separador).
func ValidPrefix(prefix string) bool {
	if len(prefix) < 2 || len(prefix) > 8 {
		return false
	}
	for _, r := range prefix {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// NumberStem devuelve "{PREFIX}-{YYYYMMDD}-", la parte fija de todos los números del día.
func NumberStem(prefix string, date time.Time) string {
	return prefix + "-" + date.Format(dateLayout) + "-"
}

// FormatNumber construye "{PREFIX}-{YYYYMMDD}-{seq}" con seq de al menos 4 dígitos.
func FormatNumber(prefix string, date time.Time, seq int) string {
	return fmt.Sprintf("%s%0*d", NumberStem(prefix, date), sequenceDigits, seq)
}

// ParseSequence extrae el consecutivo si number pertenece a (prefix, date).
func ParseSequence(number, prefix string, date time.Time) (int, bool) {
	stem := NumberStem(prefix, date)
	if !strings.HasPrefix(number, stem) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(stem):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
