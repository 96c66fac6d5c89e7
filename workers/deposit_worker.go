package workers

import (
	stdcontext "context"
	"fmt"
	"github.com/nsqio/go-nsq"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/context"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util"
	"github.com/openaccess/exchange/util/fileutil"
	"github.com/openaccess/exchange/util/logger"
	"time"
)

// DepositTask carries one deposit request through the worker.
type DepositTask struct {
	Request    *models.DepositRequest
	NSQMessage *nsq.Message
	Attempt    *models.AttemptSummary
	Repository *models.Repository
	// Protocol is the identifier of the protocol that handled
	// the request, if one could be built.
	Protocol string
	Result   *models.DepositResult
	Record   *models.DepositRecord
}

// NewDepositTask returns a task for request. Message may be nil
// when the request did not come from NSQ.
func NewDepositTask(request *models.DepositRequest, message *nsq.Message) *DepositTask {
	attemptNumber := uint16(1)
	if message != nil {
		attemptNumber = message.Attempts
	}
	return &DepositTask{
		Request:    request,
		NSQMessage: message,
		Attempt:    models.NewAttemptSummary(attemptNumber),
	}
}

// DepositWorker reads deposit requests from NSQ and runs each one
// through the protocol of the requested repository. Every attempt
// ends with a DepositRecord in the deposit store and in the JSON
// log. Messages are never requeued: once a repository has seen a
// deposit, sending it again could create a duplicate.
type DepositWorker struct {
	Context            *context.Context
	DepositChannel     chan *DepositTask
	PostProcessChannel chan *DepositTask
	ItemsInProcess     *models.SynchronizedMap
}

func NewDepositWorker(_context *context.Context) *DepositWorker {
	worker := &DepositWorker{
		Context:        _context,
		ItemsInProcess: models.NewSynchronizedMap(),
	}
	workerCount := _context.Config.DepositWorker.Workers
	if workerCount < 1 {
		workerCount = 1
	}
	workerBufferSize := workerCount * 10
	worker.DepositChannel = make(chan *DepositTask, workerBufferSize)
	worker.PostProcessChannel = make(chan *DepositTask, workerBufferSize)
	for i := 0; i < workerCount; i++ {
		go worker.deposit()
		go worker.postProcess()
	}
	return worker
}

// HandleMessage is the NSQ handler for deposit requests.
func (worker *DepositWorker) HandleMessage(message *nsq.Message) error {
	request, err := models.DepositRequestFromJson(message.Body)
	if err != nil {
		worker.Context.MessageLog.Errorf("Cannot process %s: %v", util.Truncate(string(message.Body), 500), err)
		message.Finish()
		return nil
	}
	if worker.alreadyDeposited(request) {
		message.Finish()
		return nil
	}
	startedAt, added := worker.ItemsInProcess.AddIfAbsent(request.RequestId,
		time.Now().UTC().Format(time.RFC3339))
	if !added {
		worker.Context.MessageLog.Infof("Skipping request %s: already in process as of %s.",
			request.RequestId, startedAt)
		message.Finish()
		return nil
	}

	// We'll ping NSQ manually when we need to.
	message.DisableAutoResponse()
	worker.Context.MessageLog.Infof("Putting request %s (paper %d, repository %d) into deposit channel",
		request.RequestId, request.Paper.Id, request.RepositoryId)
	worker.DepositChannel <- NewDepositTask(request, message)
	return nil
}

// A request whose latest attempt did anything but fail has reached
// the repository, or was refused. Either way, it's done.
func (worker *DepositWorker) alreadyDeposited(request *models.DepositRequest) bool {
	record, err := worker.Context.Store.GetRecordForRequest(request.RequestId)
	if err != nil {
		worker.Context.MessageLog.Warningf("Cannot look up earlier attempts at request %s: %v",
			request.RequestId, err)
		return false
	}
	if record != nil && record.Status != constants.StatusFailed {
		worker.Context.MessageLog.Infof("Skipping request %s: already handled by %s",
			request.RequestId, record.String())
		return true
	}
	return false
}

func (worker *DepositWorker) deposit() {
	for task := range worker.DepositChannel {
		worker.Process(stdcontext.Background(), task)
		worker.PostProcessChannel <- task
	}
}

func (worker *DepositWorker) postProcess() {
	for task := range worker.PostProcessChannel {
		if task.Attempt.HasErrors() {
			worker.Context.MessageLog.Errorf("Request %s: %s", task.Request.RequestId,
				task.Attempt.AllErrorsAsString())
		}
		task.NSQMessage.Finish()
		worker.ItemsInProcess.Delete(task.Request.RequestId)
		worker.Context.MessageLog.Infof("Removed request %s from items in process",
			task.Request.RequestId)
	}
}

// Process runs the deposit described by task and records the
// outcome. When it returns, task.Result and task.Record are set.
func (worker *DepositWorker) Process(ctx stdcontext.Context, task *DepositTask) *models.DepositRecord {
	task.Attempt.Start()
	worker.runDeposit(ctx, task)
	task.Attempt.Finish()

	task.Record = models.NewDepositRecord(task.Request, task.Protocol, task.Result)
	task.Record.Attempt = task.Attempt
	if err := worker.Context.Store.SaveRecord(task.Record); err != nil {
		task.Attempt.AddError("Cannot save deposit record %s: %v", task.Record.Id, err)
	}
	if err := logger.LogDepositRecord(worker.Context.JsonLog, task.Record); err != nil {
		worker.Context.MessageLog.Warningf("Cannot write deposit record %s to JSON log: %v",
			task.Record.Id, err)
	}

	repoName := fmt.Sprintf("%d", task.Request.RepositoryId)
	if task.Repository != nil {
		repoName = task.Repository.Name
	}
	worker.Context.Metrics.ObserveDeposit(repoName, task.Result.Status, task.Attempt.RunTime())
	switch task.Result.Status {
	case constants.StatusFailed, constants.StatusRefused:
		worker.Context.IncrementFailed()
	default:
		worker.Context.IncrementSucceeded()
	}
	worker.Context.MessageLog.Infof("Request %s finished: %s", task.Request.RequestId, task.Record.String())
	return task.Record
}

func (worker *DepositWorker) runDeposit(ctx stdcontext.Context, task *DepositTask) {
	request := task.Request
	task.Repository = worker.Context.Repository(request.RepositoryId)
	if task.Repository == nil {
		worker.fail(task, "Repository %d is not configured", request.RepositoryId)
		return
	}
	protocol, err := worker.Context.Registry.NewProtocol(task.Repository)
	if err != nil {
		worker.fail(task, "Cannot set up deposit into %s: %v", task.Repository.Name, err)
		return
	}
	task.Protocol = protocol.ProtocolIdentifier()
	if !protocol.InitDeposit(request.Paper, request.User) {
		task.Result, _ = models.NewDepositResult(constants.StatusRefused)
		task.Result.Message = fmt.Sprintf("Paper %d cannot be deposited into %s.",
			request.Paper.Id, task.Repository.Name)
		task.Result.Logs = protocol.Logs()
		return
	}

	pdfPath := ""
	if request.PDF != "" {
		localPath, cleanup, err := worker.Context.PDFFetcher.Fetch(ctx, request.RequestId, request.PDF)
		defer cleanup()
		if err != nil {
			worker.fail(task, "%v", err)
			return
		}
		pdfPath = localPath
		if digest, size, err := fileutil.CalculateMd5(pdfPath); err == nil {
			worker.Context.MessageLog.Infof("Request %s: PDF %s has %d bytes, md5 %s",
				request.RequestId, request.PDF, size, digest)
		}
	}
	if task.NSQMessage != nil {
		task.NSQMessage.Touch()
	}
	form := deposit.GetBoundForm(protocol, deposit.FormData(request.Form)).CleanedData()
	task.Result = worker.Context.NewDepositor().Submit(ctx, protocol, pdfPath, form, request.DryRun)
}

// fail ends an attempt that never reached the protocol's
// SubmitDeposit. The user hears about it like any other failure.
func (worker *DepositWorker) fail(task *DepositTask, format string, a ...interface{}) {
	message := fmt.Sprintf(format, a...)
	task.Attempt.AddError("%s", message)
	task.Result = models.NewFailedResult("", constants.GenericDepositFailure)
	task.Result.Logs = message
	if worker.Context.Notifier == nil {
		return
	}
	payload := models.NewNotificationPayload(task.Request.User, task.Repository,
		task.Request.Paper, worker.Context.Config.GetPaperURLFormat())
	payload.AppendMessage(constants.GenericDepositFailure)
	if err := worker.Context.Notifier.Notify(payload); err != nil {
		worker.Context.MessageLog.Warningf("Notification for %s failed: %v", payload.PaperURL, err)
	}
}
