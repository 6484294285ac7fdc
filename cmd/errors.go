package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/store"
	"github.com/spf13/viper"
)

// exitFunc is replaced in tests.
var exitFunc = os.Exit

// HandleFatalError handles unrecoverable errors that should terminate the application.
func HandleFatalError(userMsg string, technicalErr error) {
	PrintError(userMsg, technicalErr)
	exitFunc(1)
}

// PrintError prints an error message without exiting, allowing for recovery.
func PrintError(userMsg string, technicalErr error) {
	if viper.GetBool("verbose") && technicalErr != nil {
		// In verbose mode, print the detailed, underlying technical error.
		fmt.Fprintf(os.Stderr, "Error: %v\n", technicalErr)
	} else {
		fmt.Fprintln(os.Stderr, userMsg)
	}
}

// LogError logs an error at debug level.
func LogError(msg string, err error) {
	slog.Debug(msg, "error", err)
}

// friendlyError maps engine sentinels to actionable messages.
func friendlyError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrVersionConflict):
		return fmt.Errorf("tasks were changed by another process, run the command again: %w", err)
	case errors.Is(err, store.ErrChecksumMismatch):
		return fmt.Errorf("the task file failed its integrity check; restore it from the revision log (tasklane history): %w", err)
	case errors.Is(err, task.ErrDependencyCycle):
		return fmt.Errorf("rejected: %w", err)
	}
	return err
}
