package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// Level represents the logging level.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[Level]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
	FATAL: "\033[35m", // Magenta
}

const colorReset = "\033[0m"

// Logger is the main logger instance.
type Logger struct {
	mu          sync.Mutex
	level       Level
	output      io.Writer
	colorEnable bool
	prefix      string
	exit        func(int)
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger with the specified level.
// Output goes to stderr so that reports written to stdout stay clean.
func Init(levelStr string) {
	once.Do(func() {
		defaultLogger = &Logger{
			level:       ParseLevel(levelStr),
			output:      os.Stderr,
			colorEnable: IsTerminal(os.Stderr),
			exit:        os.Exit,
		}
	})
}

// get returns the default logger, initialising it at INFO on first use.
// Every access goes through once.Do so concurrent first calls do not race.
func get() *Logger {
	Init("info")
	return defaultLogger
}

// IsTerminal reports whether w is a terminal (or a Cygwin/MSYS pty).
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SetLevel sets the logging level for the default logger.
func SetLevel(levelStr string) {
	Init(levelStr)
	l := defaultLogger
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = ParseLevel(levelStr)
}

// GetLevel returns the current level of the default logger.
func GetLevel() Level {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
}

// SetColorEnable enables or disables color output.
func SetColorEnable(enable bool) {
	l := get()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.colorEnable = enable
}

// ParseLevel converts a string to a Level. Unknown names map to INFO.
func ParseLevel(levelStr string) Level {
	if level, ok := LookupLevel(levelStr); ok {
		return level
	}
	return INFO
}

// LookupLevel is ParseLevel that reports whether the name was recognised.
func LookupLevel(levelStr string) (Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return DEBUG, true
	case "INFO":
		return INFO, true
	case "WARN", "WARNING":
		return WARN, true
	case "ERROR":
		return ERROR, true
	case "FATAL":
		return FATAL, true
	default:
		return INFO, false
	}
}

// String returns the level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// log writes a log message if the level is sufficient.
func (l *Logger) log(level Level, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	message := fmt.Sprintf(format, args...)
	levelName := levelNames[level]

	var output string
	if l.colorEnable {
		output = fmt.Sprintf("%s[%s]%s %s", levelColors[level], levelName, colorReset, message)
	} else {
		output = fmt.Sprintf("[%s] %s", levelName, message)
	}

	log.New(l.output, l.prefix, log.LstdFlags).Println(output)

	if level == FATAL && l.exit != nil {
		l.exit(1)
	}
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	get().log(DEBUG, format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	get().log(INFO, format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	get().log(WARN, format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	get().log(ERROR, format, args...)
}

// Fatal logs a fatal message and exits the program.
func Fatal(format string, args ...interface{}) {
	get().log(FATAL, format, args...)
}
