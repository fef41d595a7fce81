package lex

import "strconv"

// parseFloat converts an already-validated decimal float lexeme (digits,
// possibly with a single '.') to its numeric value.
func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// parseInt converts an already-validated, prefix-stripped digit string in
// the given base to its numeric value.
func parseInt(s string, base int) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		return 0
	}
	return v
}
