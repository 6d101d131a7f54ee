package errors

import (
	"fmt"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeSnapshotMissing     ErrorType = "SnapshotMissing"
	ErrorTypeSnapshotUnparseable ErrorType = "SnapshotUnparseable"
	ErrorTypeEncoding            ErrorType = "Encoding"
	ErrorTypeAllEndpointsFailed  ErrorType = "AllEndpointsFailed"
	ErrorTypeRegistryRejected    ErrorType = "RegistryRejected"
	ErrorTypeConfiguration       ErrorType = "Configuration"
	ErrorTypeStateStore          ErrorType = "StateStore"
	ErrorTypeCycleFailed         ErrorType = "CycleFailed"
	ErrorTypeValidation          ErrorType = "Validation"
)

// SentinelError represents a user-friendly error with actionable guidance.
// Workflow carries the workflow key when the error belongs to one pipeline;
// process-level errors leave it empty.
type SentinelError struct {
	Type      ErrorType
	Workflow  string
	Message   string
	Cause     error
	Solutions []string
	Verify    string
	Help      string
}

// Error implements the error interface
func (e *SentinelError) Error() string {
	var sb strings.Builder

	if e.Workflow != "" {
		sb.WriteString(fmt.Sprintf("%s: %s", e.Workflow, e.Message))
	} else {
		sb.WriteString(e.Message)
	}

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	return sb.String()
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *SentinelError) Unwrap() error {
	return e.Cause
}

// Detail renders the full multi-line form with solutions and verification
// steps, used by the CLI error display.
func (e *SentinelError) Detail() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError: %s\n", e.Message))

	if e.Workflow != "" {
		sb.WriteString(fmt.Sprintf("Workflow: %s\n", e.Workflow))
	}

	if e.Cause != nil {
		sb.WriteString(fmt.Sprintf("Cause: %v\n", e.Cause))
	}

	if len(e.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for _, solution := range e.Solutions {
			sb.WriteString(fmt.Sprintf("  %s\n", solution))
		}
	}

	if e.Verify != "" {
		sb.WriteString(fmt.Sprintf("\nVerify: %s\n", e.Verify))
	}

	if e.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", e.Help))
	}

	return sb.String()
}

// Format implements fmt.Formatter for custom formatting
func (e *SentinelError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			fmt.Fprintf(f, "[%s] %s", e.Type, e.Detail())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	}
}

// New creates a new SentinelError
func New(errType ErrorType, message string) *SentinelError {
	return &SentinelError{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new SentinelError with a formatted message
func Newf(errType ErrorType, format string, args ...interface{}) *SentinelError {
	return New(errType, fmt.Sprintf(format, args...))
}

// WithWorkflow tags the error with the workflow pipeline it came from
func (e *SentinelError) WithWorkflow(key string) *SentinelError {
	e.Workflow = key
	return e
}

// WithCause adds the underlying error
func (e *SentinelError) WithCause(cause error) *SentinelError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *SentinelError) WithSolutions(solutions ...string) *SentinelError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds verification command
func (e *SentinelError) WithVerify(verify string) *SentinelError {
	e.Verify = verify
	return e
}

// WithHelp adds help command
func (e *SentinelError) WithHelp(help string) *SentinelError {
	e.Help = help
	return e
}

// TypeOf returns the taxonomy type of err, walking wrapped causes until a
// SentinelError is found. Untyped errors report an empty type.
func TypeOf(err error) ErrorType {
	for err != nil {
		if se, ok := err.(*SentinelError); ok {
			return se.Type
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return ""
}

// IsType reports whether err (or any wrapped cause) carries the given type.
func IsType(err error, t ErrorType) bool {
	return TypeOf(err) == t
}

// IsTerminal reports whether retrying against another endpoint could help.
// Registry rejections are authoritative answers, not transport failures:
// no amount of failover changes them.
func IsTerminal(err error) bool {
	return IsType(err, ErrorTypeRegistryRejected)
}

// GetExitCode returns appropriate exit code for error type
func GetExitCode(err error) int {
	se, ok := err.(*SentinelError)
	if !ok {
		return 1 // Generic error
	}

	switch se.Type {
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypeSnapshotMissing:
		return 66 // EX_NOINPUT
	case ErrorTypeStateStore:
		return 74 // EX_IOERR
	case ErrorTypeAllEndpointsFailed:
		return 69 // EX_UNAVAILABLE
	default:
		return 1
	}
}
