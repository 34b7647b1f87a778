package core

import "strings"

// CleanString trims leading and trailing whitespace; credentials and names are compared trimmed.
func CleanString(s string) string {
	return strings.TrimSpace(s)
}

// CleanStrings applies CleanString in place.
func CleanStrings(ss ...*string) {
	for _, s := range ss {
		*s = CleanString(*s)
	}
}
