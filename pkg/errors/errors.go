// Package errors provides structured error types used across the application.
// We prefer these over raw fmt.Errorf strings to enable reliable checks with
// errors.Is / errors.As and to carry minimal context about the failure.
package errors

import (
	"errors"
	"fmt"
)

// ValidationError indicates invalid input provided by a caller (query
// parameters, missing filter values, malformed request data).
type ValidationError struct {
	Op  string // where it happened (package.Function)
	Msg string // human friendly message
	Err error  // underlying cause (optional)
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %s: %v", e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("validation: %s: %s", e.Op, e.Msg)
}

func (e *ValidationError) Unwrap() error           { return e.Err }
func (e *ValidationError) Operation() string       { return e.Op }
func (e *ValidationError) Message() string         { return e.Msg }
func (e *ValidationError) Context() map[string]any { return map[string]any{"op": e.Op, "msg": e.Msg} }

func NewValidation(op, msg string, err error) error {
	return &ValidationError{Op: op, Msg: msg, Err: err}
}

// ConfigError is returned when deployment configuration is unusable, e.g. an
// unknown similarity metric. These are meant to stop startup.
type ConfigError struct {
	Op    string
	Key   string // configuration key, e.g. SIMILARITY_METRIC
	Value string
	Msg   string
	Err   error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	key := e.Key
	if key == "" {
		key = "config"
	}
	if e.Err != nil {
		return fmt.Sprintf("config: %s: %s=%q: %s: %v", e.Op, key, e.Value, e.Msg, e.Err)
	}
	return fmt.Sprintf("config: %s: %s=%q: %s", e.Op, key, e.Value, e.Msg)
}

func (e *ConfigError) Unwrap() error     { return e.Err }
func (e *ConfigError) Operation() string { return e.Op }
func (e *ConfigError) Message() string   { return e.Msg }
func (e *ConfigError) Context() map[string]any {
	return map[string]any{"op": e.Op, "msg": e.Msg, "key": e.Key, "value": e.Value}
}

func NewConfig(op, key, value, msg string) error {
	return &ConfigError{Op: op, Key: key, Value: value, Msg: msg}
}

// DataError represents failures while ingesting catalog data (unreadable
// files, headers that do not match the declared schema).
type DataError struct {
	Op     string
	Msg    string
	Err    error
	Source string // optional file name
}

func (e *DataError) Error() string {
	if e == nil {
		return "<nil>"
	}
	src := e.Source
	if src == "" {
		src = "data"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", src, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", src, e.Op, e.Msg)
}

func (e *DataError) Unwrap() error     { return e.Err }
func (e *DataError) Operation() string { return e.Op }
func (e *DataError) Message() string   { return e.Msg }
func (e *DataError) Context() map[string]any {
	return map[string]any{"op": e.Op, "msg": e.Msg, "source": e.Source}
}

func NewData(op, source, msg string, err error) error {
	return &DataError{Op: op, Source: source, Msg: msg, Err: err}
}

// NotFoundError is for lookups that matched nothing (no catalog row for the
// selected type/base color, brand without a record in that row).
type NotFoundError struct {
	Op  string
	Msg string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("not found: %s: %s", e.Op, e.Msg)
}

func (e *NotFoundError) Operation() string       { return e.Op }
func (e *NotFoundError) Message() string         { return e.Msg }
func (e *NotFoundError) Context() map[string]any { return map[string]any{"op": e.Op, "msg": e.Msg} }

func NewNotFound(op, msg string) error { return &NotFoundError{Op: op, Msg: msg} }

// IsKind helpers: allow callers to check error kind without type assertions.
// Example: if errors.Is(err, errors.ErrValidation) { ... }
var (
	ErrValidation = &ValidationError{}
	ErrConfig     = &ConfigError{}
	ErrData       = &DataError{}
	ErrNotFound   = &NotFoundError{}
)

// Is enables errors.Is(err, ErrValidation) via errors.As semantics.
func Is(err, target error) bool {
	if err == nil || target == nil {
		return errors.Is(err, target)
	}
	switch target.(type) {
	case *ValidationError:
		var v *ValidationError
		return errors.As(err, &v)
	case *ConfigError:
		var c *ConfigError
		return errors.As(err, &c)
	case *DataError:
		var d *DataError
		return errors.As(err, &d)
	case *NotFoundError:
		var n *NotFoundError
		return errors.As(err, &n)
	default:
		return errors.Is(err, target)
	}
}
