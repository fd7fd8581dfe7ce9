package utils

import "strings"

var sanitizer = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "", ";", "")

// SanitizeInput strips markup and statement delimiters from free text and trims it.
func SanitizeInput(s string) string {
	return strings.TrimSpace(sanitizer.Replace(s))
}
