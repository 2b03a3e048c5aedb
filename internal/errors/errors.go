package errors

import (
	"fmt"
	"os"
	"strings"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeAuthentication ErrorType = "Authentication"
	ErrorTypeConfiguration  ErrorType = "Configuration"
	ErrorTypeFileSystem     ErrorType = "FileSystem"
	ErrorTypeNetwork        ErrorType = "Network"
	ErrorTypePermission     ErrorType = "Permission"
	ErrorTypeValidation     ErrorType = "Validation"
)

// Component represents the part of the system an error came from
type Component string

const (
	ComponentKubernetes Component = "Kubernetes"
	ComponentStorage    Component = "Storage"
	ComponentSMTP       Component = "SMTP"
	ComponentReport     Component = "Report"
	ComponentUnknown    Component = "Unknown"
)

// VahtiError represents a user-friendly error with actionable guidance
type VahtiError struct {
	Type        ErrorType
	Component   Component
	Message     string
	Cause       string
	Solutions   []string
	Verify      string
	Help        string
	Environment string
}

// Error implements the error interface
func (e *VahtiError) Error() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("\nError: %s\n", e.Message))

	if e.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", e.Cause))
	}

	if e.Environment != "" {
		sb.WriteString(fmt.Sprintf("Environment: %s\n", e.Environment))
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
func (e *VahtiError) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprintf(f, "%s", e.Error())
	case 'v':
		if f.Flag('+') {
			// Verbose mode includes type and component
			fmt.Fprintf(f, "[%s/%s] %s", e.Type, e.Component, e.Error())
		} else {
			fmt.Fprintf(f, "%s", e.Error())
		}
	}
}

// New creates a new VahtiError
func New(errType ErrorType, component Component, message string) *VahtiError {
	return &VahtiError{
		Type:        errType,
		Component:   component,
		Message:     message,
		Environment: detectEnvironment(),
	}
}

// WithCause adds cause information
func (e *VahtiError) WithCause(cause string) *VahtiError {
	e.Cause = cause
	return e
}

// WithSolutions adds solution steps
func (e *VahtiError) WithSolutions(solutions ...string) *VahtiError {
	e.Solutions = append(e.Solutions, solutions...)
	return e
}

// WithVerify adds verification command
func (e *VahtiError) WithVerify(verify string) *VahtiError {
	e.Verify = verify
	return e
}

// WithHelp adds help command
func (e *VahtiError) WithHelp(help string) *VahtiError {
	e.Help = help
	return e
}

// detectEnvironment detects the current environment
func detectEnvironment() string {
	ciVars := []string{"CI", "CONTINUOUS_INTEGRATION", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_HOME"}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return "CI/CD detected"
		}
	}

	// Running as a pod inside the cluster it watches
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "In-cluster environment detected"
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return "Container environment detected"
	}

	return "Development workstation detected"
}

// IsUserError checks if error requires user action
func IsUserError(err error) bool {
	_, ok := err.(*VahtiError)
	return ok
}

// GetExitCode returns appropriate exit code for error type
func GetExitCode(err error) int {
	vahtiErr, ok := err.(*VahtiError)
	if !ok {
		return 1 // Generic error
	}

	switch vahtiErr.Type {
	case ErrorTypeAuthentication:
		return 77 // EX_NOPERM
	case ErrorTypeConfiguration:
		return 78 // EX_CONFIG
	case ErrorTypePermission:
		return 77 // EX_NOPERM
	case ErrorTypeFileSystem:
		return 66 // EX_NOINPUT
	case ErrorTypeNetwork:
		return 69 // EX_UNAVAILABLE
	default:
		return 1
	}
}
