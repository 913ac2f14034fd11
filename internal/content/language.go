package content

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// ErrUnknownLanguage is returned for language codes other than de and en.
var ErrUnknownLanguage = errors.New("content: unknown language")

const (
	English = "en"
	German  = "de"

	// DefaultLanguage is used when neither a saved nor a browser preference
	// selects a supported language.
	DefaultLanguage = English
)

// Languages lists the supported language codes.
var Languages = []string{English, German}

var matcher = language.NewMatcher([]language.Tag{language.English, language.German})

// ParseLanguage normalises a language code.
func ParseLanguage(s string) (string, error) {
	l := strings.ToLower(strings.TrimSpace(s))
	switch l {
	case English, German:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLanguage, s)
}

// Other returns the fallback for lang: de for en and en for anything else.
func Other(lang string) string {
	if lang == English {
		return German
	}
	return English
}

// DetectLanguage picks the saved language when it is supported, otherwise
// the best match for an Accept-Language header, otherwise DefaultLanguage.
func DetectLanguage(saved, acceptLanguage string) string {
	if l, err := ParseLanguage(saved); err == nil {
		return l
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultLanguage
	}
	return Languages[idx]
}
