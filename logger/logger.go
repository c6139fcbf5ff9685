package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// level is controlled by LOG_LEVEL env var
// valid values: DEBUG, INFO, WARN, ERROR (default: INFO)
var level = "INFO"

var rank = map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}

// logger is the internal logger with mutex protection and buffered writes
var logger = struct {
	sync.Mutex
	buf *bufio.Writer
}{
	buf: bufio.NewWriter(os.Stdout),
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorOrange = "\033[33m"
)

// Call this at the start of your program. An empty value keeps the default.
func SetLogLevel(l string) {
	if l == "" {
		return
	}
	if _, ok := rank[l]; !ok {
		panic("invalid log level: " + l)
	}
	level = l
}

func enabled(l string) bool {
	return rank[l] >= rank[level]
}

// Debug logs debug messages
func Debug(format string, args ...any) {
	if enabled("DEBUG") {
		log("[DEBUG]", format, args...)
	}
}

// Info logs informational messages
func Info(format string, args ...any) {
	if enabled("INFO") {
		log("[INFO] ", format, args...)
	}
}

// Warn logs expected-but-noteworthy conditions, like denied moderation calls
func Warn(format string, args ...any) {
	if enabled("WARN") {
		log("[WARN] ", format, args...)
	}
}

// Error logs error messages (always logged)
func Error(format string, args ...any) {
	log("[ERROR]", format, args...)
}

// log is the internal logging function
func log(tag string, format string, args ...any) {
	logger.Lock()
	defer logger.Unlock()

	var color string
	switch tag {
	case "[ERROR]":
		color = colorRed
	case "[WARN] ":
		color = colorOrange
	case "[INFO] ":
		color = colorGreen
	case "[DEBUG]":
		color = colorOrange
	}

	msg := fmt.Sprintf(format, args...)

	fmt.Fprintln(
		logger.buf,
		color+tag,
		time.Now().Format(time.DateTime),
		msg,
		colorReset,
	)

	logger.buf.Flush()
}
