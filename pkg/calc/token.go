// Package calc implements the calculator engine and its input normalizer.
//
// The engine is a small state machine driven by canonical tokens. Adapters
// (browser, CLI, MCP) translate their raw input with Normalize and forward the
// result to Engine.Handle, then render Engine.Display.
package calc

import "fmt"

// Kind identifies the class of a canonical token.
type Kind int

const (
	KindDigit Kind = iota
	KindDecimalPoint
	KindOperator
	KindEquals
	KindClear
	KindDelete
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindDecimalPoint:
		return "point"
	case KindOperator:
		return "operator"
	case KindEquals:
		return "equals"
	case KindClear:
		return "clear"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Operator is a binary arithmetic operator. The zero value means no operator.
type Operator byte

const (
	NoOperator Operator = 0
	Add        Operator = '+'
	Subtract   Operator = '-'
	Multiply   Operator = '*'
	Divide     Operator = '/'
)

// Valid reports whether o is one of the four canonical operators.
func (o Operator) Valid() bool {
	switch o {
	case Add, Subtract, Multiply, Divide:
		return true
	}
	return false
}

func (o Operator) String() string {
	if o == NoOperator {
		return ""
	}
	return string(rune(o))
}

// MarshalText renders the operator symbol, empty for NoOperator.
func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses an operator symbol; empty text is NoOperator.
func (o *Operator) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = NoOperator
		return nil
	}
	op := Operator(0)
	if len(text) == 1 {
		op = Operator(text[0])
	}
	if !op.Valid() {
		return fmt.Errorf("invalid operator %q", text)
	}
	*o = op
	return nil
}

// Token is a canonical input event.
type Token struct {
	Kind  Kind
	Digit byte     // '0'..'9' when Kind == KindDigit
	Op    Operator // set when Kind == KindOperator
}

// Digit returns a digit token. d may be 0-9 or '0'-'9'.
func Digit(d byte) Token {
	if d <= 9 {
		d += '0'
	}
	return Token{Kind: KindDigit, Digit: d}
}

// Point returns the decimal point token.
func Point() Token { return Token{Kind: KindDecimalPoint} }

// Op returns an operator token.
func Op(o Operator) Token { return Token{Kind: KindOperator, Op: o} }

// Equals returns the equals token.
func Equals() Token { return Token{Kind: KindEquals} }

// Clear returns the clear token.
func Clear() Token { return Token{Kind: KindClear} }

// Delete returns the delete token.
func Delete() Token { return Token{Kind: KindDelete} }

// String renders the token the way it would be typed.
func (t Token) String() string {
	switch t.Kind {
	case KindDigit:
		return string(rune(t.Digit))
	case KindDecimalPoint:
		return "."
	case KindOperator:
		return t.Op.String()
	case KindEquals:
		return "="
	case KindClear:
		return "C"
	case KindDelete:
		return "DEL"
	default:
		return t.Kind.String()
	}
}
