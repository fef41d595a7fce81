// Package util contains small generic helpers shared by more than one
// compiler package.
package util

import "strings"

// MakeTextList joins items into a human-readable list with an Oxford
// comma, used to render "expected A, B, or C"-style diagnostics out of a
// set of candidate names.
func MakeTextList(items []string) string {
	if len(items) < 1 {
		return ""
	}

	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " or " + items[1]
	}

	items[len(items)-1] = "or " + items[len(items)-1]
	return strings.Join(items, ", ")
}
