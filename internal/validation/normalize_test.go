package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeQuestionID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain id", "1717000000000", "1717000000000"},
		{"client prefix", "q_1717000000000", "1717000000000"},
		{"repeated prefix", "q_q_42", "42"},
		{"surrounding whitespace", "  q_42 ", "42"},
		{"prefix only", "q_", ""},
		{"prefix in the middle", "abc_q_1", "abc_q_1"},
		{"upper case is not a prefix", "Q_1", "Q_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeQuestionID(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizeQuestionID(got), "normalization must be idempotent")
		})
	}
}
