package models

import (
	"encoding/json"
	"flag"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/util/fileutil"
	"github.com/op/go-logging"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type WorkerConfig struct {
	// This describes how often the NSQ client should ping
	// the NSQ server to let it know it's still there. The
	// setting must be formatted like so:
	//
	// "800ms" for 800 milliseconds
	// "10s" for ten seconds
	// "1m" for one minute
	HeartbeatInterval string

	// The maximum number of times the worker should try to
	// process a job. Deposits are never requeued after the
	// remote repository has seen them, so this only applies
	// to messages that could not be parsed or routed.
	MaxAttempts uint16

	// Maximum number of jobs a worker will accept from the
	// queue at one time.
	MaxInFlight int

	// If the NSQ server does not hear from a client that a
	// job is complete in this amount of time, the server
	// considers the job to have timed out and re-queues it.
	// The deposit worker touches the message before each
	// attempt, so this should be somewhat longer than
	// Config.AttemptTimeout.
	MessageTimeout string

	// The name of the NSQ Channel the worker should read from.
	NsqChannel string

	// The name of the NSQ Topic the worker should listen to.
	NsqTopic string

	// This describes how long the NSQ client will wait for
	// a read from the NSQ server before timing out. The format
	// is the same as for HeartbeatInterval.
	ReadTimeout string

	// Number of go routines running deposit attempts in
	// parallel. Each attempt gets its own protocol instance.
	Workers int

	// This describes how long the NSQ client will wait for
	// a write to the NSQ server to complete before timing out.
	// The format is the same as for HeartbeatInterval.
	WriteTimeout string
}

type Config struct {
	// ActiveConfig is the configuration currently
	// in use.
	ActiveConfig string

	// AttemptTimeout bounds a whole deposit attempt, from
	// the first remote call to the last. Format is the same
	// as WorkerConfig.HeartbeatInterval. Defaults to 10m.
	AttemptTimeout string

	// DepositDBFile is the path to the bolt database that
	// holds one DepositRecord per attempt.
	DepositDBFile string

	// Configuration options for dep_worker.
	DepositWorker WorkerConfig

	// The directory in which to write log files.
	LogDirectory string

	// LogLevel is defined in github.com/op/go-logging
	// and should be one of the following:
	// 1 - CRITICAL
	// 2 - ERROR
	// 3 - WARNING
	// 4 - NOTICE
	// 5 - INFO
	// 6 - DEBUG
	LogLevel logging.Level

	// If true, processes will log to STDERR in addition
	// to their standard log files.
	LogToStderr bool

	// MetricsPort is the port on which dep_worker serves
	// /metrics and /ping. Zero disables the service.
	MetricsPort int

	// NotificationTopic is the NSQ topic that receives one
	// NotificationPayload per attempt. When empty, notifications
	// are written to the message log instead.
	NotificationTopic string

	// The HTTP address of the NSQ server, used for
	// publishing deposit requests and notifications.
	NsqdHttpAddress string

	// The HTTP address of the NSQ lookup daemon.
	NsqLookupd string

	// PaperURLFormat builds the paper URL sent in
	// notifications. It must contain one %d for the
	// paper id. Defaults to "/paper/%d/".
	PaperURLFormat string

	// Path to the YAML file describing the repositories
	// we deposit into.
	RepositoriesFile string

	// RequestTimeout bounds each HTTP request to a remote
	// repository. Defaults to 60s.
	RequestTimeout string

	// S3Endpoint is the host:port of the S3-compatible service
	// holding PDFs referenced as s3://bucket/key in deposit
	// requests. Credentials come from AWS_ACCESS_KEY_ID and
	// AWS_SECRET_ACCESS_KEY.
	S3Endpoint string

	// S3UseSSL turns on TLS for S3Endpoint.
	S3UseSSL bool

	// StatsDirectory is where dep_submit refresh writes
	// its RefreshStats JSON dump.
	StatsDirectory string

	// PDFDirectory is where PDFs fetched from S3 are
	// staged during an attempt.
	PDFDirectory string
}

// LoadConfigFile loads the JSON config at pathToConfigFile,
// which may be absolute or relative to EXCHANGE_HOME.
func LoadConfigFile(pathToConfigFile string) (*Config, error) {
	file, err := fileutil.LoadRelativeFile(pathToConfigFile)
	if err != nil {
		detailedError := fmt.Errorf("Error reading config file '%s': %v\n",
			pathToConfigFile, err)
		return nil, detailedError
	}
	config := &Config{}
	err = json.Unmarshal(file, config)
	if err != nil {
		detailedError := fmt.Errorf("Error parsing JSON from config file '%s': %v",
			pathToConfigFile, err)
		return nil, detailedError
	}
	config.ActiveConfig = pathToConfigFile
	return config, nil
}

func (config *Config) EnsureLogDirectory() (string, error) {
	config.ExpandFilePaths()
	err := config.createDirectories()
	if err != nil {
		return "", err
	}
	return config.AbsLogDirectory(), nil
}

func (config *Config) AbsLogDirectory() string {
	absLogDir, err := filepath.Abs(config.LogDirectory)
	if err != nil {
		msg := fmt.Sprintf("Cannot get absolute path to log directory. "+
			"config.LogDirectory is set to '%s'", config.LogDirectory)
		panic(msg)
	}
	return absLogDir
}

// EnsureDepositConfig checks the settings every deposit
// process needs and returns the first problem it finds.
func (config *Config) EnsureDepositConfig() error {
	if config.RepositoriesFile == "" {
		return fmt.Errorf("RepositoriesFile is missing from config file")
	}
	if config.DepositDBFile == "" {
		return fmt.Errorf("DepositDBFile is missing from config file")
	}
	if _, err := config.RequestTimeoutDuration(); err != nil {
		return err
	}
	if _, err := config.AttemptTimeoutDuration(); err != nil {
		return err
	}
	if config.PaperURLFormat != "" && strings.Count(config.PaperURLFormat, "%d") != 1 {
		return fmt.Errorf("PaperURLFormat '%s' has no verb for the paper id", config.PaperURLFormat)
	}
	return nil
}

// RequestTimeoutDuration returns RequestTimeout as a Duration,
// or the default when it is not set.
func (config *Config) RequestTimeoutDuration() (time.Duration, error) {
	return parseDuration("RequestTimeout", config.RequestTimeout, constants.DefaultRequestTimeout)
}

// AttemptTimeoutDuration returns AttemptTimeout as a Duration,
// or the default when it is not set.
func (config *Config) AttemptTimeoutDuration() (time.Duration, error) {
	return parseDuration("AttemptTimeout", config.AttemptTimeout, constants.DefaultAttemptTimeout)
}

// GetPaperURLFormat returns the configured format, or
// constants.DefaultPaperURLFormat.
func (config *Config) GetPaperURLFormat() string {
	if config.PaperURLFormat == "" {
		return constants.DefaultPaperURLFormat
	}
	return config.PaperURLFormat
}

func parseDuration(name, value string, defaultValue time.Duration) (time.Duration, error) {
	if value == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s '%s' is not a valid duration: %v", name, value, err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("%s must be positive, got '%s'", name, value)
	}
	return duration, nil
}

func (config *Config) ExpandFilePaths() {
	expanded, err := fileutil.ExpandTilde(config.LogDirectory)
	if err == nil {
		config.LogDirectory = expanded
	}
	expanded, err = fileutil.ExpandTilde(config.PDFDirectory)
	if err == nil {
		config.PDFDirectory = expanded
	}
	expanded, err = fileutil.ExpandTilde(config.StatsDirectory)
	if err == nil {
		config.StatsDirectory = expanded
	}
	expanded, err = fileutil.ExpandTilde(config.DepositDBFile)
	if err == nil {
		config.DepositDBFile = expanded
	}
	if config.RepositoriesFile != "" && !filepath.IsAbs(config.RepositoriesFile) {
		expanded, err = fileutil.ExpandTilde(config.RepositoriesFile)
		if err == nil && expanded == config.RepositoriesFile {
			expanded, err = fileutil.RelativeToAbsPath(config.RepositoriesFile)
		}
		if err == nil {
			config.RepositoriesFile = expanded
		}
	}
}

func (config *Config) createDirectories() error {
	if config.LogDirectory == "" {
		return fmt.Errorf("You must define config.LogDirectory")
	}
	dirs := []string{config.LogDirectory, config.PDFDirectory, config.StatsDirectory}
	if config.DepositDBFile != "" {
		dirs = append(dirs, filepath.Dir(config.DepositDBFile))
	}
	for _, dir := range dirs {
		if dir != "" && !fileutil.FileExists(dir) {
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (config *Config) TestsAreRunning() bool {
	return flag.Lookup("test.v") != nil
}

func (config *Config) GetAWSAccessKeyId() string {
	keyId := os.Getenv("AWS_ACCESS_KEY_ID")
	if keyId == "" && config.TestsAreRunning() {
		keyId = "TestKeyId"
	}
	return keyId
}

func (config *Config) GetAWSSecretAccessKey() string {
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if secretKey == "" && config.TestsAreRunning() {
		secretKey = "TestSecretKey"
	}
	return secretKey
}
