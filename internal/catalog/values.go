package catalog

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

var (
	reSegmentUnsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
	reDashes        = regexp.MustCompile(`-+`)
	reSlugUnsafe    = regexp.MustCompile(`[^a-z0-9]+`)
	reAttrPrefix    = regexp.MustCompile(`(?i)^attribute_`)
	rePaPrefix      = regexp.MustCompile(`(?i)^pa_`)
)

// HasContent: skalar, który po przycięciu nie jest pusty.
func HasContent(v Value) bool {
	return v.Kind() == Scalar && v.trimmed() != ""
}

func hasText(s string) bool { return strings.TrimSpace(s) != "" }

// FirstNonEmpty zwraca pierwszą wartość z treścią albo Absent.
func FirstNonEmpty(values ...Value) Value {
	for _, v := range values {
		if HasContent(v) {
			return v
		}
	}
	return Value{}
}

func firstText(values ...string) string {
	for _, s := range values {
		if hasText(s) {
			return s
		}
	}
	return ""
}

// SanitizeSegment robi bezpieczny fragment ścieżki/nazwy pliku.
func SanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = reSegmentUnsafe.ReplaceAllString(s, "-")
	s = strings.Trim(reDashes.ReplaceAllString(s, "-"), "-")
	if s == "" {
		return "item"
	}
	return s
}

// Slugify: małe litery, bez prefiksów attribute_/pa_, reszta na myślniki.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "attribute_")
	s = strings.TrimPrefix(s, "pa_")
	s = reSlugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func stripAttributePrefixes(s string) string {
	s = reAttrPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	return rePaPrefix.ReplaceAllString(s, "")
}

// NormalizeSiteRoot sprowadza adres sklepu do "scheme://host/".
func NormalizeSiteRoot(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", errors.New("store URL must use http:// or https://")
	}
	if u.Host == "" {
		return "", errors.New("store URL must include a valid host")
	}
	return u.Scheme + "://" + u.Host + "/", nil
}

// ResolveURL rozwiązuje (względny) adres względem korzenia sklepu.
func ResolveURL(ref, siteRoot string) string {
	if !hasText(ref) {
		return ""
	}
	base, err := url.Parse(siteRoot)
	if err != nil {
		return ""
	}
	u, err := base.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	return u.String()
}
