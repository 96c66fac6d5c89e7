package logger_test

import (
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/fileutil"
	"github.com/openaccess/exchange/util/logger"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	stdlog "log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
)

// Get a barebones config object with just enough info to
// set up logging. Log to a temp dir.
func getLoggingTestConfig(t *testing.T) *models.Config {
	logDir, err := ioutil.TempDir("", "exchange_log_test")
	require.Nil(t, err, "Can't create temp dir to test logging")
	return &models.Config{
		LogDirectory: logDir,
		LogLevel:     logging.ERROR,
		LogToStderr:  false,
	}
}

// Delete temp log dir after tests.
func teardownLoggerTest(config *models.Config) {
	os.RemoveAll(config.AbsLogDirectory())
}

func TestInitLogger(t *testing.T) {
	config := getLoggingTestConfig(t)
	defer teardownLoggerTest(config)
	log, filename := logger.InitLogger(config)
	log.Errorf("Test Message %d", 1)
	log.Infof("Below the configured level")
	logFile := filepath.Join(config.AbsLogDirectory(), path.Base(os.Args[0])+".log")
	assert.Equal(t, logFile, filename)
	require.True(t, fileutil.FileExists(logFile), "Log file does not exist at %s", logFile)
	data, err := ioutil.ReadFile(logFile)
	require.Nil(t, err)
	assert.True(t, strings.HasSuffix(string(data), "Test Message 1\n"))
	assert.False(t, strings.Contains(string(data), "Below the configured level"))
}

func TestInitJsonLogger(t *testing.T) {
	config := getLoggingTestConfig(t)
	defer teardownLoggerTest(config)
	log, filename := logger.InitJsonLogger(config)
	log.Println("{a:100}")
	logFile := filepath.Join(config.AbsLogDirectory(), path.Base(os.Args[0])+".json")
	assert.Equal(t, logFile, filename)
	require.True(t, fileutil.FileExists(logFile), "Log file does not exist at %s", logFile)
	data, err := ioutil.ReadFile(logFile)
	require.Nil(t, err)
	assert.Equal(t, "{a:100}\n", string(data))
}

func TestLogDepositRecord(t *testing.T) {
	config := getLoggingTestConfig(t)
	defer teardownLoggerTest(config)
	jsonLog, logFile := logger.InitJsonLogger(config)

	record := testutil.MakeDepositRecord("pending")
	require.Nil(t, logger.LogDepositRecord(jsonLog, record))
	require.Nil(t, record.SetStatus("published"))
	require.Nil(t, logger.LogDepositRecord(jsonLog, record))

	// The parser should return the last state of the record.
	found, err := testutil.FindDepositRecordInLog(logFile, record.RequestId)
	require.Nil(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.Id, found.Id)
	assert.Equal(t, "published", found.Status)

	_, err = testutil.FindDepositRecordInLog(logFile, "not-a-request")
	assert.NotNil(t, err)
}

func TestLogDepositRecordToBuffer(t *testing.T) {
	buf := &strings.Builder{}
	jsonLog := stdlog.New(buf, "", 0)
	record := testutil.MakeDepositRecord("failed")
	require.Nil(t, logger.LogDepositRecord(jsonLog, record))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Equal(t, 3, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "-------- BEGIN "+record.RequestId))
	assert.True(t, strings.HasPrefix(lines[2], "-------- END "+record.RequestId))
}

func TestDiscardLogger(t *testing.T) {
	log := logger.DiscardLogger("logger_test")
	require.NotNil(t, log)
	log.Infof("This should not cause an error!")
}

func TestMemoryLogger(t *testing.T) {
	log, buffer := logger.MemoryLogger("logger_test")
	log.Warningf("Deposit %d failed", 42)
	assert.Contains(t, buffer.String(), "Deposit 42 failed")
}
