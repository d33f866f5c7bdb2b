package utils

import (
	"strings"
	"unicode"
)

// DisplayNameFromEmail derives a readable name from the local part of an
// email address: separators become spaces and each word is title-cased.
// "ana.maria_pop@student.usv.ro" becomes "Ana Maria Pop".
func DisplayNameFromEmail(email string) string {
	local, _, found := strings.Cut(email, "@")
	if !found || local == "" {
		local = email
	}

	replacer := strings.NewReplacer(".", " ", "_", " ", "-", " ")
	words := strings.Fields(replacer.Replace(local))

	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
