package engine

import (
	"regexp"
	"strings"
	"testing"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{1,10}-[A-Z0-9]{4}$`)

func TestGenerateCodeFormat(t *testing.T) {
	tests := []struct {
		name       string
		first      string
		last       string
		wantPrefix string
	}{
		{"simple name", "Alice", "Martin", "ALICEMARTI"},
		{"short name", "Bo", "Li", "BOLI"},
		{"name is truncated to ten characters", "Maximilian", "Oberhauser", "MAXIMILIAN"},
		{"accents and punctuation are stripped", "Anne-Marie", "O'Neil", "ANNEMARIEO"},
		{"digits survive", "X4", "", "X4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := GenerateCode(tt.first, tt.last)
			if !codePattern.MatchString(code) {
				t.Fatalf("code %q does not match expected format", code)
			}
			if !strings.HasPrefix(code, tt.wantPrefix+"-") {
				t.Errorf("code %q, want prefix %q", code, tt.wantPrefix)
			}
		})
	}
}

func TestGenerateCodeGuestWithoutName(t *testing.T) {
	code := GenerateCode("", "")
	if len(code) != codeSuffixLen {
		t.Fatalf("guest code %q has length %d, want %d", code, len(code), codeSuffixLen)
	}
	if strings.Contains(code, "-") {
		t.Errorf("guest code %q must not contain a hyphen", code)
	}
}

func TestGenerateCodeSuffixCharset(t *testing.T) {
	// The random suffix avoids ambiguous characters (I, L, O, 0, 1)
	for i := 0; i < 200; i++ {
		code := GenerateCode("", "")
		for _, c := range code {
			if !strings.ContainsRune(codeCharset, c) {
				t.Fatalf("suffix %q contains %q, outside the allowed charset", code, c)
			}
		}
	}
}

func TestGenerateCodeIsRandomized(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerateCode("Alice", "Martin")] = true
	}
	if len(seen) < 2 {
		t.Error("repeated generation always yields the same code")
	}
}
