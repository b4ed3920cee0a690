package util

import (
	"regexp"
	"strings"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "item"
	}
	return s
}

// UniqueSlug appends a short random suffix so two products with the same name never collide.
func UniqueSlug(s string) (string, error) {
	suffix, err := RandomHex(4)
	if err != nil {
		return "", err
	}
	return Slugify(s) + "-" + suffix, nil
}
