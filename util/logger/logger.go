package logger

import (
	"bytes"
	"fmt"
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/models"
	"io/ioutil"
	stdlog "log"
	"os"
	"path"
	"path/filepath"
	"time"
)

/*
InitLogger creates and returns a logger suitable for logging
human-readable message, along with the path to the log file.
*/
func InitLogger(config *models.Config) (*logging.Logger, string) {
	processName := path.Base(os.Args[0])
	filename := fmt.Sprintf("%s.log", processName)
	filename = filepath.Join(config.AbsLogDirectory(), filename)
	if config.LogDirectory != "" {
		// If this fails, OpenFile will fail in just a second
		_ = os.MkdirAll(config.LogDirectory, 0755)
	}
	writer, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v\n", filename, err)
		os.Exit(1)
	}

	log := logging.MustGetLogger(processName)
	format := logging.MustStringFormatter("%{time} [%{level}] %{message}")
	logging.SetFormatter(format)

	logBackend := logging.NewLogBackend(writer, "", 0)
	if config.LogToStderr {
		// Log to BOTH file and stderr
		stderrBackend := logging.NewLogBackend(os.Stderr, "", stdlog.LstdFlags|stdlog.Lshortfile)
		stderrBackend.Color = true
		logging.SetBackend(logBackend, stderrBackend)
	} else {
		// Log to file only
		logging.SetBackend(logBackend)
	}
	// SetBackend resets module levels.
	logging.SetLevel(config.LogLevel, processName)

	return log, filename
}

/*
InitJsonLogger creates and returns a logger suitable for logging JSON
data. Each deposit record goes into the file as a JSON object between
BEGIN and END marker lines (see LogDepositRecord), so the last known
state of any request is easy to find. Also returns the path to
the log file.
*/
func InitJsonLogger(config *models.Config) (*stdlog.Logger, string) {
	processName := path.Base(os.Args[0])
	filename := fmt.Sprintf("%s.json", processName)
	filename = filepath.Join(config.AbsLogDirectory(), filename)
	writer, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open log file '%s': %v", filename, err)
		os.Exit(1)
	}
	return stdlog.New(writer, "", 0), filename
}

// LogDepositRecord dumps record into the JSON log, surrounded by
// markers that make it easy to find.
func LogDepositRecord(jsonLog *stdlog.Logger, record *models.DepositRecord) error {
	jsonString, err := record.ToJson()
	if err != nil {
		return err
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)
	startMessage := fmt.Sprintf("-------- BEGIN %s | Paper: %d | Time: %s --------",
		record.RequestId, record.PaperId, timestamp)
	endMessage := fmt.Sprintf("-------- END %s | Paper: %d | Time: %s --------",
		record.RequestId, record.PaperId, timestamp)
	jsonLog.Println(startMessage)
	jsonLog.Println(jsonString)
	jsonLog.Println(endMessage)
	return nil
}

/*
Discard logger returns a logger that writes to dev/null.
Suitable for use in testing.
*/
func DiscardLogger(module string) *logging.Logger {
	log := logging.MustGetLogger(module)
	devnull := logging.NewLogBackend(ioutil.Discard, "", 0)
	logging.SetBackend(devnull)
	logging.SetLevel(logging.INFO, module)
	return log
}

// MemoryLogger returns a logger that writes into the returned
// buffer, for tests that check what was logged.
func MemoryLogger(module string) (*logging.Logger, *bytes.Buffer) {
	buffer := &bytes.Buffer{}
	log := logging.MustGetLogger(module)
	backend := logging.NewLogBackend(buffer, "", 0)
	logging.SetBackend(backend)
	logging.SetLevel(logging.DEBUG, module)
	return log, buffer
}
