package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseRegister Phase = "register"  // category lookup, shape and function registration
	PhaseToNative Phase = "to_native" // host to Go
	PhaseToHost   Phase = "to_host"   // Go to host
	PhaseScope    Phase = "scope"     // env and handle lifetime
	PhaseHost     Phase = "host"      // host heap operations
	PhaseCall     Phase = "call"      // boundary crossing
	PhaseDeclare  Phase = "declare"   // declaration synthesis
	PhaseConfig   Phase = "config"    // configuration loading
	PhaseManifest Phase = "manifest"  // manifest parsing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType Kind = "unsupported_type"
	KindTypeMismatch    Kind = "type_mismatch"
	KindRangeOverflow   Kind = "range_overflow"
	KindEncoding        Kind = "encoding_error"
	KindMissingField    Kind = "missing_field"
	KindScopeViolation  Kind = "handle_scope_violation"
	KindNative          Kind = "native_error"
	KindAllocation      Kind = "allocation"
	KindNotFound        Kind = "not_found"
	KindInvalidInput    Kind = "invalid_input"
	KindRegistration    Kind = "registration"
	KindDuplicate       Kind = "duplicate"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	HostType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(JoinPath(e.Path))
	}

	if e.GoType != "" || e.HostType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.HostType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", host type ")
			b.WriteString(e.HostType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.HostType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		if t.Phase == "" {
			return e.Kind == t.Kind
		}
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the value path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// HostType sets the host type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// JoinPath renders a conversion path. Index segments attach to their parent:
// param[0].deps[2].name
func JoinPath(path []string) string {
	var b strings.Builder
	for i, seg := range path {
		if i > 0 && !strings.HasPrefix(seg, "[") {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

// KindOf returns the Kind of err if it is (or wraps) an *Error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsConversion reports whether err is a recoverable per-call conversion error.
func IsConversion(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindTypeMismatch, KindRangeOverflow, KindEncoding, KindMissingField:
		return true
	}
	return false
}

// At re-anchors err to a conversion phase and path. Host-phase errors take the
// given phase; an existing path is kept. Scope violations are never re-phased.
func At(phase Phase, err error, path []string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if !stderrors.As(err, &e) {
		return &Error{
			Phase: phase,
			Kind:  KindInvalidInput,
			Path:  clonePath(path),
			Cause: err,
		}
	}
	c := *e
	if c.Phase == PhaseHost {
		c.Phase = phase
	}
	if len(c.Path) == 0 {
		c.Path = clonePath(path)
	}
	return &c
}

func clonePath(path []string) []string {
	if len(path) == 0 {
		return nil
	}
	return append([]string(nil), path...)
}

// Convenience constructors for common error patterns

// UnsupportedType creates an unsupported type error
func UnsupportedType(goType, detail string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindUnsupportedType,
		GoType: goType,
		Detail: detail,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		HostType: hostType,
	}
}

// RangeOverflow creates an overflow error
func RangeOverflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindRangeOverflow,
		Path:     path,
		HostType: target,
		Detail:   fmt.Sprintf("value %v does not fit %s", value, target),
		Value:    value,
	}
}

// LimitExceeded creates an overflow error for a configured size limit
func LimitExceeded(phase Phase, path []string, what string, size, limit int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRangeOverflow,
		Path:   path,
		Detail: fmt.Sprintf("%s size %d exceeds maximum %d", what, size, limit),
		Value:  size,
	}
}

// Cycle creates an overflow error for a value that contains itself
func Cycle(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRangeOverflow,
		Path:   path,
		Detail: "value contains itself",
	}
}

// InvalidUTF8 creates an encoding error for native strings
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindEncoding,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidUTF16 creates an encoding error for host strings
func InvalidUTF16(phase Phase, path []string, index int, unit uint16) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindEncoding,
		Path:   path,
		Detail: fmt.Sprintf("unpaired surrogate 0x%04X at code unit %d", unit, index),
		Value:  unit,
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindMissingField,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// ScopeViolation creates a handle scope violation error
func ScopeViolation(detail string, args ...any) *Error {
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	return &Error{
		Phase:  PhaseScope,
		Kind:   KindScopeViolation,
		Detail: detail,
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size, align uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes (align %d)", size, align),
	}
}

// Native wraps an error or panic value raised by a native function body
func Native(function string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindNative,
		Detail: fmt.Sprintf("native function %s failed", function),
		Cause:  cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Duplicate creates a duplicate registration error
func Duplicate(what, name string) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindDuplicate,
		Detail: fmt.Sprintf("%s %q already registered", what, name),
	}
}

// Registration creates a registration error
func Registration(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s", name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
