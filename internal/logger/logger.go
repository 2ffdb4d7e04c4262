package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	defaultLogger *Logger
	once          sync.Once
)

// Logger wraps the standard log.Logger with date-based file rotation and an
// optional asynchronous Elasticsearch mirror.
type Logger struct {
	logDir      string
	currentDate string
	logFile     *os.File
	es          *esWriter
	mu          sync.Mutex
}

// InitLogger routes the standard log package through a date-rotated file in
// the specified directory. When esCfg enables it, every line is also mirrored
// to Elasticsearch.
func InitLogger(logDir string, esCfg *ESConfig) error {
	var err error
	once.Do(func() {
		defaultLogger, err = NewLogger(logDir, esCfg)
		if err != nil {
			return
		}
		// Replace standard log output
		log.SetOutput(defaultLogger)
		log.SetFlags(log.LstdFlags)
	})
	return err
}

// NewLogger creates a new logger instance with date-based file rotation
func NewLogger(logDir string, esCfg *ESConfig) (*Logger, error) {
	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		logDir: logDir,
	}

	// Initialize the log file for today
	if err := l.rotateIfNeeded(); err != nil {
		return nil, err
	}

	if esCfg != nil && esCfg.Enabled && len(esCfg.Addresses) > 0 && esCfg.Index != "" {
		esw, err := newESWriter(esCfg)
		if err != nil {
			// Keep logging locally when ES is unreachable
			log.Printf("⚠️  Elasticsearch log mirror disabled: %v", err)
		} else {
			l.es = esw
		}
	}

	return l, nil
}

// rotateIfNeeded checks if we need to rotate to a new log file based on the date
func (l *Logger) rotateIfNeeded() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := time.Now().Format("20060102")

	// If date hasn't changed, no need to rotate
	if l.currentDate == today && l.logFile != nil {
		return nil
	}

	// Close existing log file if open
	if l.logFile != nil {
		l.logFile.Close()
	}

	// Open new log file for today
	logFileName := filepath.Join(l.logDir, fmt.Sprintf("%s.log", today))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	l.logFile = logFile
	l.currentDate = today

	return nil
}

// Write implements io.Writer interface
func (l *Logger) Write(p []byte) (n int, err error) {
	// Check if we need to rotate (date changed)
	if err := l.rotateIfNeeded(); err != nil {
		// If rotation fails, still write to stdout
		return os.Stdout.Write(p)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Write to stdout first
	n1, err1 := os.Stdout.Write(p)
	if err1 != nil {
		return n1, err1
	}

	// Write to file
	if l.logFile != nil {
		if _, err2 := l.logFile.Write(p); err2 != nil {
			return n1, err2
		}
	}

	// Mirror to Elasticsearch, best effort
	if l.es != nil {
		l.es.Write(p)
	}

	return n1, nil
}

// Close closes the log file and stops the Elasticsearch mirror.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.es != nil {
		l.es.Close()
		l.es = nil
	}
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	return defaultLogger
}
