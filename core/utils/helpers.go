package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// ToPascalCase joins the alphanumeric words of name, upper-casing the first
// rune of each. Existing inner capitals are kept, so "blogPost" becomes
// "BlogPost" and "users Copy" becomes "UsersCopy".
func ToPascalCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var b strings.Builder
	for _, word := range words {
		b.WriteString(ToExportedName(word))
	}
	return b.String()
}

func ToLowerCamel(name string) string {
	pascal := ToPascalCase(name)
	if pascal == "" {
		return pascal
	}
	runes := []rune(pascal)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}

func ToExportedName(name string) string {
	if len(name) == 0 {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// UniqueName returns base, or base followed by the smallest counter from 2
// upwards, whichever is not in taken. The result is added to taken.
func UniqueName(base string, taken map[string]bool) string {
	name := base
	for i := 2; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}
