package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/angelmondragon/partsbin-backend/pkg/errors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the operation ran and was rejected
	ExitCommandError = 2 // bad flags, unreachable database
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
	Verbose   bool
}

// Response is the envelope for structured output.
type Response struct {
	Status string     `json:"status" yaml:"status"`
	Data   any        `json:"data,omitempty" yaml:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty" yaml:"error,omitempty"`
}

// ErrorBody is the error half of a Response.
type ErrorBody struct {
	Code    string `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
	Details any    `json:"details,omitempty" yaml:"details,omitempty"`
}

// Success writes data. text is used for the text format.
func (f *OutputFormatter) Success(data any, text string) error {
	switch f.Format {
	case FormatJSON:
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	case FormatYAML:
		return f.writeYAML(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Fail reports err in the configured format and returns the ExitError the
// command should exit with.
func (f *OutputFormatter) Fail(message string, err error) error {
	code := string(pkgerrors.CodeOf(err))
	body := &ErrorBody{Code: code, Message: err.Error()}
	if typed := pkgerrors.As(err); typed != nil {
		body.Message = typed.Message()
		body.Details = typed.Details()
	}

	switch f.Format {
	case FormatJSON:
		_ = json.NewEncoder(f.Writer).Encode(Response{Status: "error", Error: body})
	case FormatYAML:
		_ = f.writeYAML(Response{Status: "error", Error: body})
	default:
		fmt.Fprintf(f.errWriter(), "Error [%s]: %s\n", body.Code, body.Message)
		if f.Verbose && body.Details != nil {
			fmt.Fprintf(f.errWriter(), "Details: %v\n", body.Details)
		}
	}
	return WrapExitError(ExitFailure, message, err)
}

// VerboseLog writes a diagnostic line only when verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.errWriter(), format+"\n", args...)
}

func (f *OutputFormatter) errWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// writeYAML encodes v through its JSON form so YAML keys match the JSON
// field names.
func (f *OutputFormatter) writeYAML(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(f.Writer)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}
