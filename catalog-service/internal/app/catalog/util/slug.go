package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	LocaleFR = "fr"
	LocaleEN = "en"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify строит slug во французской локали (& -> "et")
func Slugify(name string) string {
	return SlugifyLocale(name, LocaleFR)
}

// SlugifyLocale: NFD + удаление диакритики, нижний регистр,
// & заменяется словом локали, любые прочие символы схлопываются в "-".
func SlugifyLocale(name, locale string) string {
	// transform.Chain хранит состояние, поэтому собирается на каждый вызов
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(stripMarks, name)
	if err != nil {
		s = name
	}

	s = strings.ToLower(s)

	amp := " et "
	if locale == LocaleEN {
		amp = " and "
	}
	s = strings.ReplaceAll(s, "&", amp)

	s = nonAlphanumeric.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
