package config

import (
	"regexp"
	"strings"
)

// MaxBranchNameByteLength leaves room for the reviewing suffix and the
// refs/remotes/<remote>/ prefix inside git's 256 byte ref limit
const MaxBranchNameByteLength = 200

var (
	// branchNameInvalidRegex matches characters that are not allowed in feature or branch names.
	// Valid characters: letters, numbers, -, _, /, .
	branchNameInvalidRegex = regexp.MustCompile(`[^-_/.a-zA-Z0-9]`)
)

// CheckBranchName returns a reason when name cannot be used as a local branch,
// or an empty string when it can
func CheckBranchName(name string) string {
	switch {
	case name == "":
		return "name is empty"
	case len(name) > MaxBranchNameByteLength:
		return "name is too long"
	case branchNameInvalidRegex.MatchString(name):
		return "name contains characters outside [-_/.a-zA-Z0-9]"
	case strings.HasPrefix(name, "-"), strings.HasPrefix(name, "/"), strings.HasPrefix(name, "."):
		return "name cannot start with '-', '/' or '.'"
	case strings.HasSuffix(name, "/"), strings.HasSuffix(name, "."), strings.HasSuffix(name, ".lock"):
		return "name cannot end with '/', '.' or '.lock'"
	case strings.Contains(name, ".."), strings.Contains(name, "//"), strings.Contains(name, "/."):
		return "name contains an invalid sequence"
	}
	return ""
}
