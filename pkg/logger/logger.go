// Package logger provides the process-wide logger for cypress-report.
//
// Messages go to the console with a coloured level prefix and, once Init
// has been called, to a log file as well. Debug messages are dropped unless
// debug output has been enabled with SetDebug.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/fatih/color"
)

const prefix = "[cypress-report]"

var (
	fileLogger *log.Logger
	logFile    *os.File
	console    io.Writer = os.Stdout
	debug      bool
	mu         sync.Mutex

	infoTag  = color.New(color.FgCyan).SprintFunc()
	debugTag = color.New(color.FgMagenta).SprintFunc()
	warnTag  = color.New(color.FgYellow).SprintFunc()
	errorTag = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Init opens the log file at logPath and mirrors all messages into it.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //#nosec G304 -- user-provided log path
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	fileLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)

	return nil
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		fileLogger = nil
	}
}

// SetDebug enables or disables debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	debug = enabled
}

// DebugEnabled reports whether debug output is on.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// SetOutput redirects console output. A nil writer silences the console.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = io.Discard
	}
	console = w
}

// SetNoColor disables ANSI colours on the console.
func SetNoColor(noColor bool) {
	color.NoColor = noColor
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	write("INFO", infoTag, format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	enabled := debug
	mu.Unlock()

	if enabled {
		write("DEBUG", debugTag, format, v...)
	}
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	write("ERROR", errorTag, format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	write("WARN", warnTag, format, v...)
}

// GetWriter returns the open log file, or io.Discard when there is none.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}

func write(level string, tag func(a ...interface{}) string, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	msg := fmt.Sprintf(format, v...)
	fmt.Fprintf(console, "%s %s %s\n", prefix, tag(level), msg)

	if fileLogger != nil {
		fileLogger.Printf("[%s] %s", level, msg)
	}
}
