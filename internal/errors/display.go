package errors

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/viper"
)

// DisplayError formats and displays a SentinelError with enhanced formatting
func DisplayError(err error) {
	// Check if color should be disabled
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SENTINEL_NO_COLOR") != ""

	// Also check viper configuration (set by --no-color flag)
	if viperNoColor := getViperBool("output.no_color"); viperNoColor {
		noColor = true
	}

	color.NoColor = noColor

	se, ok := err.(*SentinelError)
	if !ok {
		// For untyped errors, display a simple error message
		color.Red("Error: %v", err)
		return
	}

	// Choose color based on error type
	colorFunc := getErrorStyle(se.Type)

	// Error header
	fmt.Fprintf(os.Stderr, "\n%s\n", colorFunc(se.Message))

	if se.Workflow != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.CyanString("Workflow:"), color.HiWhiteString(se.Workflow))
	}

	// Cause with dimmed style
	if se.Cause != nil {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.YellowString("Cause:"), color.HiBlackString(se.Cause.Error()))
	}

	// Solutions with numbered list
	if len(se.Solutions) > 0 {
		fmt.Fprintf(os.Stderr, "\n   %s\n", color.GreenString("Solutions:"))
		for i, solution := range se.Solutions {
			fmt.Fprintf(os.Stderr, "   %s %s\n", color.HiBlackString(fmt.Sprintf("%d.", i+1)), solution)
		}
	}

	// Verification command
	if se.Verify != "" {
		fmt.Fprintf(os.Stderr, "\n   %s %s\n", color.BlueString("Verify:"), color.HiWhiteString(se.Verify))
	}

	// Help command
	if se.Help != "" {
		fmt.Fprintf(os.Stderr, "   %s %s\n", color.MagentaString("Help:"), color.HiWhiteString(se.Help))
	}

	fmt.Fprintln(os.Stderr) // Final newline
}

// getErrorStyle returns the appropriate color function for an error type
func getErrorStyle(errType ErrorType) func(format string, a ...interface{}) string {
	switch errType {
	case ErrorTypeSnapshotMissing, ErrorTypeSnapshotUnparseable:
		return color.MagentaString
	case ErrorTypeConfiguration, ErrorTypeValidation:
		return color.YellowString
	case ErrorTypeAllEndpointsFailed, ErrorTypeStateStore:
		return color.RedString
	case ErrorTypeRegistryRejected:
		return color.CyanString
	default:
		return color.RedString
	}
}

// DisplayWarning shows a warning message with appropriate formatting
func DisplayWarning(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SENTINEL_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Warning: %s\n", color.YellowString(message))
}

// DisplaySuccess shows a success message with appropriate formatting
func DisplaySuccess(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SENTINEL_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Success: %s\n", color.GreenString(message))
}

// DisplayInfo shows an info message with appropriate formatting
func DisplayInfo(message string) {
	noColor := os.Getenv("NO_COLOR") != "" || os.Getenv("SENTINEL_NO_COLOR") != ""
	color.NoColor = noColor

	fmt.Fprintf(os.Stderr, "Info: %s\n", color.BlueString(message))
}

// getViperBool safely gets a boolean value from viper
func getViperBool(key string) bool {
	if viper.IsSet(key) {
		return viper.GetBool(key)
	}
	return false
}
