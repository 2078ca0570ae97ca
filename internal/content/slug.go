package content

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugDropRegex   = regexp.MustCompile(`[^\w\s-]`)
	slugSpaceRegex  = regexp.MustCompile(`\s+`)
	slugHyphenRegex = regexp.MustCompile(`-+`)
)

// Slugify derives a URL slug from a title: lowercase, accents removed, any
// character other than letters, digits, underscore, whitespace and hyphen
// dropped, whitespace runs turned into a single hyphen.
//
//	Slugify("Prisão Preventiva: Requisitos") == "prisao-preventiva-requisitos"
func Slugify(title string) string {
	s := strings.ToLower(title)
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = slugDropRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugHyphenRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
