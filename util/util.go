package util

import (
	"regexp"
	"strings"
)

var reUUID = regexp.MustCompile(`(?i)^([a-f\d]{8}(-[a-f\d]{4}){3}-[a-f\d]{12}?)$`)

// Returns true if the list of strings contains item.
func StringListContains(list []string, item string) bool {
	if list != nil {
		for i := range list {
			if list[i] == item {
				return true
			}
		}
	}
	return false
}

// UniqueStrings returns the non-empty items of list, without
// duplicates, in the order they first appear.
func UniqueStrings(list []string) []string {
	seen := make(map[string]bool)
	unique := make([]string, 0)
	for _, item := range list {
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		unique = append(unique, item)
	}
	return unique
}

// SplitAndTrim splits str on sep, trims whitespace from each
// piece and drops the empty ones. "a, b ,, c" split on ","
// returns ["a", "b", "c"].
func SplitAndTrim(str, sep string) []string {
	items := make([]string, 0)
	for _, item := range strings.Split(str, sep) {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

func LooksLikeUUID(uuid string) bool {
	return reUUID.MatchString(uuid)
}

// Cleans a string we might find a config file, trimming leading
// and trailing spaces, single quotes and double quoted. Note that
// leading and trailing spaces inside the quotes are not trimmed.
func CleanString(str string) string {
	cleanStr := strings.TrimSpace(str)
	// Strip leading and traling quotes, but only if string has matching
	// quotes at both ends.
	if len(cleanStr) > 1 && (strings.HasPrefix(cleanStr, "'") && strings.HasSuffix(cleanStr, "'") ||
		strings.HasPrefix(cleanStr, "\"") && strings.HasSuffix(cleanStr, "\"")) {
		return cleanStr[1 : len(cleanStr)-1]
	}
	return cleanStr
}

// Truncate returns the first max bytes of str, followed by "..."
// if anything was cut off.
func Truncate(str string, max int) string {
	if max <= 0 || len(str) <= max {
		return str
	}
	return str[:max] + "..."
}
