package errors

import (
	"strings"
	"testing"
)

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "lodash", false},
		{"valid with dash", "lodash-es", false},
		{"valid with dot", "socket.io", false},
		{"valid scoped", "@babel/core", false},

		{"grandfathered uppercase", "JSONStream", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 215), true},
		{"path traversal ..", "foo/../bar", true},
		{"double slash", "foo//bar", true},
		{"null byte", "foo\x00bar", true},
		{"backslash", "foo\\bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePackageName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}

	t.Run("error carries the invalid-package code", func(t *testing.T) {
		if err := ValidatePackageName("foo/../bar"); !Is(err, ErrCodeInvalidPackage) {
			t.Errorf("ValidatePackageName() error = %v, want code %s", err, ErrCodeInvalidPackage)
		}
	})
}
