package errors

import (
	"testing"
)

func TestValidateEntryName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"metadata", "metadata.json", false},
		{"chunk", "chunks/000001.jsonld", false},
		{"compressed chunk", "chunks/000002.cbor.zst", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 600)), true},
		{"absolute", "/etc/passwd", true},
		{"traversal", "chunks/../../x", true},
		{"backslash", "chunks\\1.jsonld", true},
		{"null byte", "a\x00b", true},
		{"control char", "a\x01b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntryName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntryName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidateEntryName(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode Code
	}{
		{"absolute http", "http://example.com/files/1", ""},
		{"absolute urn", "urn:uuid:0d6b2a8e-3f1e-4c1e-9c1a-1f6f0e4b1a2c", ""},
		{"blank", "_:file-1", ""},

		{"empty", "", ErrCodeMissingIdentifier},
		{"bare blank prefix", "_:", ErrCodeInvalidInput},
		{"relative", "files/1", ErrCodeInvalidInput},
		{"whitespace", "http://example.com/a b", ErrCodeInvalidInput},
		{"non-utf8 absolute", "http://example.com/a\xffb", ErrCodeInvalidInput},
		{"non-utf8 blank", "_:a\xffb", ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.input)
			if tt.wantCode == "" {
				if err != nil {
					t.Errorf("ValidateIdentifier(%q) error = %v, want nil", tt.input, err)
				}
				return
			}
			if !Is(err, tt.wantCode) {
				t.Errorf("ValidateIdentifier(%q) code = %v, want %v", tt.input, GetCode(err), tt.wantCode)
			}
		})
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("_:x") {
		t.Error("IsBlank(_:x) = false, want true")
	}
	if IsBlank("http://example.com/_:x") {
		t.Error("IsBlank(absolute) = true, want false")
	}
}
