package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		name    string
		slug    string
		wantErr bool
	}{
		{"prismic uid", "como-utilizar-hooks", false},
		{"mixed case", "postA", false},
		{"underscore and dot", "v1.2_release", false},
		{"accented", "introdução", false},
		{"empty", "", true},
		{"leading dot", "..", true},
		{"leading hyphen", "-draft", true},
		{"space", "two words", true},
		{"query chars", "a?b=c", true},
		{"too long", strings.Repeat("a", 201), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
