package numbering

import "fmt"

// Format renders a document number as PREFIX/FY/0001
func Format(prefix, financialYear string, seq int64) string {
	return fmt.Sprintf("%s/%s/%04d", prefix, financialYear, seq)
}
