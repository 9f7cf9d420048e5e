package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName rejects package names that could be used for path
// traversal or injection when the name is spliced into registry URLs or
// package-manager argument vectors.
//
// The rules are deliberately loose: uppercase letters pass, because
// grandfathered registry names carry them. Only names no registry could
// ever serve are refused:
//   - empty names
//   - control characters
//   - path traversal sequences (.., //, backslashes)
//   - more than 214 characters (the npm registry limit)
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidPackage, "package name too long (max 214 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid sequence %q", pattern)
		}
	}

	return nil
}
