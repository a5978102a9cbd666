package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "Vecinu2024", false},
		{"Exactly Min Length", "Abcdefg1", false},
		{"Exactly Max Length", "A1" + strings.Repeat("b", 70), false},
		{"Too Short", "Abcde1", true},
		{"Too Long", "A1" + strings.Repeat("b", 71), true},
		{"No Upper", "vecinu2024", true},
		{"No Digit", "VecinuVecinu", true},
		{"Unicode Upper", "Ăsta12345", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
