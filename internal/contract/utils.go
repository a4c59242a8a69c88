package contract

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/statlake/covidload/schema"
)

// Color variables for console output.
var (
	SuccessColor   = color.New(color.FgGreen, color.Bold)  // run completed cleanly
	PartialColor   = color.New(color.FgYellow, color.Bold) // run completed with skips/rejects
	FailedColor    = color.New(color.FgRed, color.Bold)    // run aborted
	CorrectedColor = color.New(color.FgCyan)               // downward source revision
)

// GetStatusLabel returns the plain text label for a run status.
func GetStatusLabel(status schema.RunStatus) string {
	return string(status)
}

// GetColorStatusLabel returns a colored run-status label for table output.
func GetColorStatusLabel(status schema.RunStatus) string {
	switch status {
	case schema.RunSuccess:
		return SuccessColor.Sprint(status)
	case schema.RunPartial:
		return PartialColor.Sprint(status)
	default:
		return FailedColor.Sprint(status)
	}
}

// GetColorMetricLabel returns a colored metric-status label for table output.
func GetColorMetricLabel(status schema.MetricStatus) string {
	if status == schema.CorrectedStatus {
		return CorrectedColor.Sprint(status)
	}
	return string(status)
}

// SelectOutputFile returns stdout when no path is given, else creates the file.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "❌ %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarning logs a warning.
func LogWarning(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %s: %v\n", msg, err)
		return
	}
	fmt.Fprintf(os.Stderr, "⚠️  %s\n", msg)
}
