package utils

import "github.com/microcosm-cc/bluemonday"

// All user-authored text — check-in reflections, profile bios and shared
// insights — passes through this policy before storage.
var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips unsafe HTML from user-authored content.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
