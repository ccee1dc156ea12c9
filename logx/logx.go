package logx

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

const (
	defaultMaxSizeMB  = 100
	defaultMaxAgeDays = 7
)

var (
	mu     sync.RWMutex
	logger = log.New(&lumberjack.Logger{
		Filename: getLogFilename(),
		MaxSize:  getIntEnv("LOGFILE_MAX_SIZE_MB", defaultMaxSizeMB), // megabytes
		MaxAge:   getIntEnv("LOGFILE_MAX_AGE_DAYS", defaultMaxAgeDays), // days
	}, "", log.Ldate|log.Ltime|log.Lmicroseconds)
)

func getLogFilename() string {
	if logFile := os.Getenv("LOGFILE"); logFile != "" {
		return "./logs/" + logFile
	}
	return "./logs/vault.log"
}

func getIntEnv(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// InitWithOutput redirects every logger call to w.
func InitWithOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)
}

// InitRotatingFile switches output to a rotating file.
func InitRotatingFile(filename string, maxSizeMB, maxAgeDays int) {
	if maxSizeMB <= 0 {
		maxSizeMB = defaultMaxSizeMB
	}
	if maxAgeDays <= 0 {
		maxAgeDays = defaultMaxAgeDays
	}
	InitWithOutput(&lumberjack.Logger{
		Filename: filename,
		MaxSize:  maxSizeMB,
		MaxAge:   maxAgeDays,
	})
}

func write(level, color, category string, content ...interface{}) {
	message := fmt.Sprint(content...)
	coloredCategory := fmt.Sprintf("%s[%s][%s]%s", color, level, category, ColorReset)
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Printf("%s: %s", coloredCategory, message)
}

func Info(category string, content ...interface{}) {
	write("INFO", ColorGreen, category, content...)
}

func Error(category string, content ...interface{}) {
	write("ERROR", ColorRed, category, content...)
}

func Warn(category string, content ...interface{}) {
	write("WARN", ColorYellow, category, content...)
}

func Debug(category string, content ...interface{}) {
	write("DEBUG", ColorBlue, category, content...)
}

// Errorf logs an error message and returns a formatted error
func Errorf(format string, args ...interface{}) error {
	err := fmt.Errorf(format, args...)
	Error("ERROR", err.Error())
	return err
}
