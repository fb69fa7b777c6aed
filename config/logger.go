package config

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const logFlags = log.Ldate | log.Ltime | log.Lshortfile

var (
	InfoLogger    = log.New(os.Stdout, "INFO: ", logFlags)
	WarningLogger = log.New(os.Stdout, "WARNING: ", logFlags)
	ErrorLogger   = log.New(os.Stderr, "ERROR: ", logFlags)
)

// SetupLogger sends every level to stdout and, when dir is set, to a daily
// file under it.
func SetupLogger(dir string) error {
	var out io.Writer = os.Stdout
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create log directory: %v", err)
		}
		name := filepath.Join(dir, fmt.Sprintf("%s.log", time.Now().Format("2006-01-02")))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return fmt.Errorf("open log file: %v", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}

	InfoLogger = log.New(out, "INFO: ", logFlags)
	WarningLogger = log.New(out, "WARNING: ", logFlags)
	ErrorLogger = log.New(out, "ERROR: ", logFlags)
	return nil
}

func Info(format string, v ...interface{}) {
	InfoLogger.Output(2, fmt.Sprintf(format, v...))
}

func Warning(format string, v ...interface{}) {
	WarningLogger.Output(2, fmt.Sprintf(format, v...))
}

func Error(format string, v ...interface{}) {
	ErrorLogger.Output(2, fmt.Sprintf(format, v...))
}
