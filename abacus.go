// Package abacus provides an embeddable pocket-calculator engine.
//
// An engine keeps a running calculation driven by key presses and renders a
// single-line display after every press, the way a desk calculator does.
// Raw keys (button labels or keyboard key names) go through Normalize; the
// resulting tokens drive the engine.
//
// # Quick Start
//
//	engine, err := abacus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, key := range abacus.SplitKeys("3 + 4 × 2 Enter") {
//	    if tok, ok := abacus.Normalize(key); ok {
//	        engine.Handle(tok)
//	    }
//	}
//	fmt.Println(engine.Display()) // 14
//
// # Behaviour
//
//   - Operations chain left to right: 3 + 4 × 2 evaluates 3 + 4 first.
//   - Pressing an operator twice keeps only the last one.
//   - Equals with no second operand does nothing.
//   - Division by zero shows the error text and resets the calculation.
package abacus

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/abacus/pkg/calc"
)

// Engine is an alias for the calculator engine type.
type Engine = calc.Engine

// State is an alias for the engine state snapshot.
type State = calc.State

// Token is an alias for a canonical input token.
type Token = calc.Token

// Option is a functional option for configuring an engine.
type Option = calc.Option

// New creates a new engine with the provided options.
func New(opts ...Option) (*Engine, error) {
	return calc.New(opts...)
}

// WithErrorText sets the text shown after a division by zero.
func WithErrorText(text string) Option {
	return calc.WithErrorText(text)
}

// WithLogger sets the engine's logger.
func WithLogger(logger arbor.ILogger) Option {
	return calc.WithLogger(logger)
}

// Normalize maps a raw key or label to a token.
func Normalize(raw string) (Token, bool) {
	return calc.Normalize(raw)
}

// SplitKeys breaks free-form input into raw keys.
func SplitKeys(s string) []string {
	return calc.SplitKeys(s)
}

// FormatNumber renders a number the way the display does.
func FormatNumber(n float64) string {
	return calc.FormatNumber(n)
}

// Evaluate presses keys on a fresh engine and returns the final display.
// Keys that are not calculator keys are skipped.
func Evaluate(keys ...string) string {
	engine, _ := calc.New()
	for _, key := range keys {
		if tok, ok := calc.Normalize(key); ok {
			engine.Handle(tok)
		}
	}
	return engine.Display()
}
