package experimentlog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	logFilePermissionsConstant         = 0o644
	logDirectoryPermissionsConstant    = 0o755
	recordSeparatorConstant            = "\n"
	emptyLogPathMessageConstant        = "experiment log path must not be empty"
	openLogFileTemplateConstant        = "unable to open experiment log %s: %w"
	marshalRecordTemplateConstant      = "unable to encode experiment record: %w"
	writeRecordTemplateConstant        = "unable to append experiment record to %s: %w"
	synchronizeRecordTemplateConstant  = "unable to synchronize experiment log %s: %w"
	createLogDirectoryTemplateConstant = "unable to create experiment log directory %s: %w"
)

// ErrLoggerClosed reports appends attempted after Close.
var ErrLoggerClosed = errors.New("experiment log already closed")

// Logger appends records to a JSONL file. Each append is flushed to stable
// storage before Append returns. Logger is safe for concurrent use.
type Logger struct {
	mutex    sync.Mutex
	filePath string
	file     *os.File
	clock    func() time.Time
}

// NewLogger opens (or creates) the journal at logFilePath in append mode.
// Parent directories are created when missing.
func NewLogger(logFilePath string) (*Logger, error) {
	return newLoggerWithClock(logFilePath, time.Now)
}

func newLoggerWithClock(logFilePath string, clock func() time.Time) (*Logger, error) {
	if len(logFilePath) == 0 {
		return nil, errors.New(emptyLogPathMessageConstant)
	}

	logDirectory := filepath.Dir(logFilePath)
	if directoryError := os.MkdirAll(logDirectory, logDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(createLogDirectoryTemplateConstant, logDirectory, directoryError)
	}

	logFile, openError := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissionsConstant)
	if openError != nil {
		return nil, fmt.Errorf(openLogFileTemplateConstant, logFilePath, openError)
	}

	return &Logger{filePath: logFilePath, file: logFile, clock: clock}, nil
}

// Append serializes the record as one JSON line and flushes it to disk. A zero
// Timestamp is replaced with the current time before serialization.
func (logger *Logger) Append(record Record) error {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if logger.file == nil {
		return ErrLoggerClosed
	}

	if record.Timestamp.IsZero() {
		record.Timestamp = logger.clock()
	}

	encodedRecord, marshalError := json.Marshal(record)
	if marshalError != nil {
		return fmt.Errorf(marshalRecordTemplateConstant, marshalError)
	}

	if _, writeError := logger.file.Write(append(encodedRecord, recordSeparatorConstant...)); writeError != nil {
		return fmt.Errorf(writeRecordTemplateConstant, logger.filePath, writeError)
	}

	if syncError := logger.file.Sync(); syncError != nil {
		return fmt.Errorf(synchronizeRecordTemplateConstant, logger.filePath, syncError)
	}

	return nil
}

// Close releases the underlying file. Subsequent appends fail with ErrLoggerClosed.
func (logger *Logger) Close() error {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if logger.file == nil {
		return nil
	}

	closeError := logger.file.Close()
	logger.file = nil
	return closeError
}
