package calc

import (
	"errors"
	"math"
	"strings"

	"github.com/ternarybob/arbor"
)

// DefaultErrorText is shown after a division by zero or an overflow.
const DefaultErrorText = "Error"

var (
	// ErrDivisionByZero is the error marker produced by x / 0.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrOverflow is produced when a result is not a finite number.
	ErrOverflow = errors.New("result out of range")
)

// State is a snapshot of the engine's running calculation.
type State struct {
	Display            string   `json:"display"`
	FirstOperand       *float64 `json:"first_operand"`
	Operator           Operator `json:"operator"`
	ShouldResetDisplay bool     `json:"should_reset_display"`
	WaitingForOperand  bool     `json:"waiting_for_operand"`
}

// InitialState returns the state of a freshly created or cleared engine.
func InitialState() State {
	return State{Display: "0"}
}

// Engine owns one calculator state and applies tokens to it.
// An Engine is not safe for concurrent use; callers serialise access.
type Engine struct {
	state     State
	errorText string
	logger    arbor.ILogger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithErrorText sets the text displayed for the error marker.
func WithErrorText(text string) Option {
	return func(e *Engine) error {
		if text == "" {
			return errors.New("error text must not be empty")
		}
		e.errorText = text
		return nil
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// New creates an engine in the initial state.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		state:     InitialState(),
		errorText: DefaultErrorText,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Handle applies one token and returns the text to display.
func (e *Engine) Handle(tok Token) string {
	switch tok.Kind {
	case KindDigit:
		e.AppendDigit(tok.Digit)
	case KindDecimalPoint:
		e.AppendPoint()
	case KindOperator:
		e.ChooseOperator(tok.Op)
	case KindEquals:
		e.Equals()
	case KindDelete:
		e.DeleteLast()
	case KindClear:
		e.Clear()
	}
	return e.Display()
}

// Display returns the current display text.
func (e *Engine) Display() string {
	if e.state.Display == "" {
		return "0"
	}
	return e.state.Display
}

// State returns a copy of the current state.
func (e *Engine) State() State {
	s := e.state
	s.Display = e.Display()
	if s.FirstOperand != nil {
		v := *s.FirstOperand
		s.FirstOperand = &v
	}
	return s
}

// ErrorText returns the text shown for the error marker.
func (e *Engine) ErrorText() string {
	return e.errorText
}

// AppendDigit appends a digit to the buffer. d may be 0-9 or '0'-'9'.
func (e *Engine) AppendDigit(d byte) {
	if d <= 9 {
		d += '0'
	}
	if d < '0' || d > '9' {
		return
	}
	e.append(d)
}

// AppendPoint appends a decimal point unless the buffer already has one.
func (e *Engine) AppendPoint() {
	e.append('.')
}

func (e *Engine) append(c byte) {
	if e.state.ShouldResetDisplay || e.state.WaitingForOperand {
		e.state.Display = ""
		e.state.ShouldResetDisplay = false
		e.state.WaitingForOperand = false
	}

	current := e.state.Display
	if current == "0" {
		current = ""
	}

	switch {
	case c == '.' && strings.Contains(current, "."):
		return
	case c == '.' && current == "":
		e.state.Display = "0."
	case c == '0' && current == "":
		e.state.Display = "0"
	default:
		e.state.Display = current + string(c)
	}
}

// ChooseOperator records op as the pending operator, evaluating any
// complete pending operation first so that operations chain left to right.
func (e *Engine) ChooseOperator(op Operator) {
	if !op.Valid() {
		return
	}

	switch {
	case e.state.FirstOperand == nil:
		v := ParseNumber(e.state.Display)
		e.state.FirstOperand = &v
	case !e.state.WaitingForOperand:
		result, err := e.performCalculation()
		if err != nil {
			e.fail(err)
			return
		}
		e.state.Display = FormatNumber(result)
		e.state.FirstOperand = &result
	default:
		// operator pressed twice: the latest one wins
	}

	e.state.Operator = op
	e.state.WaitingForOperand = true
	e.state.ShouldResetDisplay = true
}

// Equals completes the pending operation. It does nothing unless an
// operator is pending and a second operand has been typed.
func (e *Engine) Equals() {
	if e.state.Operator == NoOperator || e.state.WaitingForOperand {
		return
	}

	result, err := e.performCalculation()
	if err != nil {
		e.fail(err)
		return
	}

	e.state.Display = FormatNumber(result)
	e.state.FirstOperand = &result
	e.state.Operator = NoOperator
	e.state.WaitingForOperand = true
	e.state.ShouldResetDisplay = true
}

// DeleteLast removes the last typed character. Results and errors on the
// display are not editable.
func (e *Engine) DeleteLast() {
	if e.state.WaitingForOperand || e.state.ShouldResetDisplay {
		return
	}

	d := e.state.Display
	if len(d) > 0 {
		d = d[:len(d)-1]
	}
	if d == "" || d == "-" {
		d = "0"
	}
	e.state.Display = d
}

// Clear resets the engine to its initial state.
func (e *Engine) Clear() {
	e.state = InitialState()
}

func (e *Engine) performCalculation() (float64, error) {
	if e.state.Operator == NoOperator || e.state.FirstOperand == nil {
		return ParseNumber(e.state.Display), nil
	}
	second := ParseNumber(e.state.Display)
	return apply(e.state.Operator, *e.state.FirstOperand, second)
}

// fail shows the error text and resets everything else. The next digit
// starts a fresh entry.
func (e *Engine) fail(err error) {
	if e.logger != nil {
		e.logger.Debug().Err(err).Str("operator", e.state.Operator.String()).Msg("calculation failed")
	}
	e.state = InitialState()
	e.state.Display = e.errorText
	e.state.ShouldResetDisplay = true
}

func apply(op Operator, a, b float64) (float64, error) {
	var r float64
	switch op {
	case Add:
		r = a + b
	case Subtract:
		r = a - b
	case Multiply:
		r = a * b
	case Divide:
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		r = a / b
	default:
		return b, nil
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return 0, ErrOverflow
	}
	return r, nil
}
