package errors

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// DisplayError formats and displays a VahtiError with enhanced formatting
func DisplayError(err error) {
	// Check if color should be disabled
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("VAHTI_NO_COLOR") != ""

	// Also check viper configuration (set by --no-color flag)
	if viperNoColor := getViperBool("output.no_color"); viperNoColor {
		noColor = true
	}

	color.NoColor = noColor

	vahtiErr, ok := err.(*VahtiError)
	if !ok {
		// For plain errors, display a simple error message
		color.Red("Error: %v", err)
		return
	}

	// Choose color based on error type
	colorFunc := getErrorStyle(vahtiErr.Type)

	// Error header
	fmt.Fprintf(os.Stderr, "\n%s\n", colorFunc(vahtiErr.Message))

	// Cause with dimmed style
	if vahtiErr.Cause != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(vahtiErr.Cause))
	}

	// Environment with dimmed style
	if vahtiErr.Environment != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.CyanString("Environment:"), color.HiBlackString(vahtiErr.Environment))
	}

	// Solutions with numbered list
	if len(vahtiErr.Solutions) > 0 {
		fmt.Fprintf(os.Stderr, "\n   %s\n", color.GreenString("Solutions:"))
		for i, solution := range vahtiErr.Solutions {
			fmt.Fprintf(os.Stderr, "   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution)
		}
	}

	// Verification command
	if vahtiErr.Verify != "" {
		fmt.Fprintf(os.Stderr, "\n   %s %s\n", color.BlueString("Verify:"), color.HiWhiteString(vahtiErr.Verify))
	}

	// Help command
	if vahtiErr.Help != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(vahtiErr.Help))
	}

	fmt.Fprintln(os.Stderr) // Final newline
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeAuthentication:
		return color.RedString
	case ErrorTypeConfiguration:
		return color.YellowString
	case ErrorTypeFileSystem:
		return color.MagentaString
	case ErrorTypeNetwork:
		return color.RedString
	case ErrorTypePermission:
		return color.RedString
	case ErrorTypeValidation:
		return color.YellowString
	default:
		return color.RedString
	}
}

// FormatErrorWithContext formats an error with additional context for CI/CD environments
func FormatErrorWithContext(err error, context map[string]string) string {
	var sb strings.Builder

	vahtiErr, ok := err.(*VahtiError)
	if !ok {
		sb.WriteString(fmt.Sprintf("Error: %v\n", err))
		return sb.String()
	}

	// Main error without color for CI/CD
	sb.WriteString(fmt.Sprintf("Error: %s\n", vahtiErr.Message))
	sb.WriteString(fmt.Sprintf("Type: %s/%s\n", vahtiErr.Type, vahtiErr.Component))

	if vahtiErr.Cause != "" {
		sb.WriteString(fmt.Sprintf("Cause: %s\n", vahtiErr.Cause))
	}

	// Add context
	if len(context) > 0 {
		sb.WriteString("\nContext:\n")
		for k, v := range context {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", k, v))
		}
	}

	// Solutions as plain text
	if len(vahtiErr.Solutions) > 0 {
		sb.WriteString("\nSolutions:\n")
		for i, solution := range vahtiErr.Solutions {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, solution))
		}
	}

	if vahtiErr.Verify != "" {
		sb.WriteString(fmt.Sprintf("\nVerify: %s\n", vahtiErr.Verify))
	}

	if vahtiErr.Help != "" {
		sb.WriteString(fmt.Sprintf("Help: %s\n", vahtiErr.Help))
	}

	return sb.String()
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("VAHTI_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Warning: %s\n", color.YellowString(message))
}

// DisplaySuccess shows a success message with appropriate formatting
func DisplaySuccess(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("VAHTI_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Success: %s\n", color.GreenString(message))
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
