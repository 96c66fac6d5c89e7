package context

import (
	"fmt"
	"github.com/minio/minio-go"
	"github.com/op/go-logging"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/network"
	"github.com/openaccess/exchange/notification"
	"github.com/openaccess/exchange/protocol/osf"
	"github.com/openaccess/exchange/service"
	"github.com/openaccess/exchange/util/logger"
	"github.com/openaccess/exchange/util/storage"
	"github.com/prometheus/client_golang/prometheus"
	stdlog "log"
	"sync/atomic"
)

/*
Context sets up the items common to the deposit processes
(dep_worker, dep_submit). It holds the protocol registry and the
repositories it serves, the deposit record store, the queue
client, the notifier and the metrics, and encapsulates some
functions common to those processes.
*/
type Context struct {
	Config          *models.Config
	MessageLog      *logging.Logger
	JsonLog         *stdlog.Logger
	Registry        *deposit.Registry
	Repositories    []*models.Repository
	Store           *storage.BoltDB
	NSQClient       *network.NSQClient
	Notifier        deposit.Notifier
	PDFFetcher      *network.PDFFetcher
	MetricsRegistry *prometheus.Registry
	Metrics         *service.DepositMetrics
	pathToLogFile   string
	pathToJsonLog   string
	succeeded       int64
	failed          int64
}

/*
Creates and returns a new Context object. This checks the config,
creates the directories it names, opens the logs and the deposit
record store, loads the repositories and registers the deposit
protocols. Any failure here is a configuration problem, and the
caller should exit.

This object is meant to used as a singleton with any of the
stand-alone deposit processes. Call Close when done.
*/
func NewContext(config *models.Config) (*Context, error) {
	context, err := NewContextWithoutStore(config)
	if err != nil {
		return nil, err
	}
	if err := context.OpenStore(false); err != nil {
		return nil, err
	}
	return context, nil
}

// NewContextWithoutStore sets up everything NewContext does except
// the deposit record store. Bolt lets only one process write to the
// store, and dep_worker holds it while it runs, so processes that
// don't need it should not open it. Call OpenStore if you do.
func NewContextWithoutStore(config *models.Config) (*Context, error) {
	if err := config.EnsureDepositConfig(); err != nil {
		return nil, err
	}
	if _, err := config.EnsureLogDirectory(); err != nil {
		return nil, fmt.Errorf("Cannot create directories: %v", err)
	}
	context := &Context{
		Config:    config,
		succeeded: int64(0),
		failed:    int64(0),
	}
	context.MessageLog, context.pathToLogFile = logger.InitLogger(config)
	context.JsonLog, context.pathToJsonLog = logger.InitJsonLogger(config)

	if err := context.initRegistry(); err != nil {
		return nil, err
	}
	repositories, err := models.LoadRepositories(config.RepositoriesFile)
	if err != nil {
		return nil, err
	}
	context.Repositories = repositories
	for _, repo := range repositories {
		if _, err := context.Registry.Lookup(repo.Protocol); err != nil {
			return nil, fmt.Errorf("Repository %d (%s): %v", repo.Id, repo.Name, err)
		}
	}

	context.NSQClient = network.NewNSQClient(config.NsqdHttpAddress)
	context.initNotifier()
	context.initPDFFetcher()
	context.MetricsRegistry = prometheus.NewRegistry()
	context.Metrics = service.NewDepositMetrics(context.MetricsRegistry)
	return context, nil
}

// OpenStore opens the deposit record store named in the config.
// A read-only store can be shared with other readers, never with
// a writer.
func (context *Context) OpenStore(readOnly bool) error {
	if context.Store != nil {
		return nil
	}
	store, err := storage.OpenBoltDB(context.Config.DepositDBFile, readOnly)
	if err != nil {
		return fmt.Errorf("Cannot open deposit database '%s': %v", context.Config.DepositDBFile, err)
	}
	context.Store = store
	return nil
}

func (context *Context) initRegistry() error {
	requestTimeout, err := context.Config.RequestTimeoutDuration()
	if err != nil {
		return err
	}
	context.Registry = deposit.NewRegistry(deposit.Options{RequestTimeout: requestTimeout})
	return osf.Register(context.Registry)
}

// Notifications always go to the message log, and to NSQ when
// a notification topic is configured.
func (context *Context) initNotifier() {
	logNotifier := notification.NewLogNotifier(context.MessageLog)
	if context.Config.NotificationTopic == "" {
		context.Notifier = logNotifier
		return
	}
	context.Notifier = notification.NewChain(
		logNotifier,
		notification.NewNSQNotifier(context.NSQClient, context.Config.NotificationTopic, context.MessageLog))
}

// Without an S3 endpoint, deposit requests must point to local PDFs.
func (context *Context) initPDFFetcher() {
	var getter network.ObjectGetter
	if context.Config.S3Endpoint != "" {
		client, err := context.GetS3Client(context.Config.S3Endpoint,
			context.Config.GetAWSAccessKeyId(), context.Config.GetAWSSecretAccessKey())
		if err != nil {
			context.MessageLog.Warningf("Cannot create S3 client for %s: %v. "+
				"Only local PDFs can be deposited.", context.Config.S3Endpoint, err)
		} else {
			getter = client
		}
	}
	context.PDFFetcher = network.NewPDFFetcher(getter, context.Config.PDFDirectory)
}

// Repository returns the configured repository with the given id,
// or nil.
func (context *Context) Repository(id int) *models.Repository {
	return models.FindRepository(context.Repositories, id)
}

// NewDepositor returns a Depositor set up with the context's
// notifier and the configured timeouts.
func (context *Context) NewDepositor() *deposit.Depositor {
	attemptTimeout, err := context.Config.AttemptTimeoutDuration()
	if err != nil {
		// EnsureDepositConfig already rejected bad durations.
		attemptTimeout = 0
	}
	return deposit.NewDepositor(context.Notifier, context.Config.GetPaperURLFormat(),
		attemptTimeout, context.MessageLog)
}

// Close closes the deposit record store.
func (context *Context) Close() {
	if context.Store != nil {
		context.Store.Close()
		context.Store = nil
	}
}

// Returns the number of deposits that succeeded.
func (context *Context) Succeeded() int64 {
	return atomic.LoadInt64(&context.succeeded)
}

// Returns the number of deposits that failed.
func (context *Context) Failed() int64 {
	return atomic.LoadInt64(&context.failed)
}

// Increases the count of successful deposits by one.
func (context *Context) IncrementSucceeded() int64 {
	return atomic.AddInt64(&context.succeeded, 1)
}

// Increases the count of failed deposits by one.
func (context *Context) IncrementFailed() int64 {
	return atomic.AddInt64(&context.failed, 1)
}

// Returns the path to this process' log file
func (context *Context) PathToLogFile() string {
	return context.pathToLogFile
}

// Returns the path to this process' JSON log file
func (context *Context) PathToJsonLog() string {
	return context.pathToJsonLog
}

// Logs info about the number of deposits that have succeeded and failed.
func (context *Context) LogStats() {
	context.MessageLog.Infof("**STATS** Succeeded: %d, Failed: %d",
		context.Succeeded(), context.Failed())
}

// GetS3Client returns a Minio client. For url param, do not include
// protocol. E.g. Use "example.com" not "https://example.com".
// Config.S3UseSSL decides whether the client uses https.
func (context *Context) GetS3Client(url, accessKeyId, secretAccessKey string) (*minio.Client, error) {
	return network.NewMinioClient(url, accessKeyId, secretAccessKey, context.Config.S3UseSSL)
}
