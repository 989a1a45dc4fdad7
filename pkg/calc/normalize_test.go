package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want Token
	}{
		{"0", Digit(0)},
		{"9", Digit(9)},
		{".", Point()},
		{"+", Op(Add)},
		{"-", Op(Subtract)},
		{"*", Op(Multiply)},
		{"/", Op(Divide)},
		{"×", Op(Multiply)},
		{"✕", Op(Multiply)},
		{"÷", Op(Divide)},
		{"−", Op(Subtract)},
		{"=", Equals()},
		{"Enter", Equals()},
		{"Backspace", Delete()},
		{"Escape", Clear()},
		{"Delete", Clear()},
		{"７", Digit(7)},
		{"＋", Op(Add)},
		{"．", Point()},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, raw := range []string{"", " ", "Shift", "Control", "a", "12", "enter", "%", "\t"} {
		_, ok := Normalize(raw)
		assert.False(t, ok, "raw %q", raw)
	}
}

func TestSplitKeys(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "+", "3", "="}, SplitKeys("12+3="))
	assert.Equal(t, []string{"1", "+", "2", "Enter"}, SplitKeys("1 + 2 Enter"))
	assert.Equal(t, []string{"8", "÷", "2", "Backspace"}, SplitKeys("8÷2\tBackspace"))
	assert.Empty(t, SplitKeys("   "))
}

func TestTokenString(t *testing.T) {
	assert.Equal(t, "7", Digit(7).String())
	assert.Equal(t, "*", Op(Multiply).String())
	assert.Equal(t, "=", Equals().String())
	assert.Equal(t, "", NoOperator.String())
	assert.Equal(t, "operator", KindOperator.String())
}

func TestOperatorText(t *testing.T) {
	var op Operator
	assert.NoError(t, op.UnmarshalText([]byte("*")))
	assert.Equal(t, Multiply, op)

	assert.NoError(t, op.UnmarshalText(nil))
	assert.Equal(t, NoOperator, op)

	assert.Error(t, op.UnmarshalText([]byte("%")))

	text, err := Divide.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "/", string(text))
}
