package main

import (
	stdcontext "context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/stats"
	"github.com/openaccess/exchange/util"
	"github.com/openaccess/exchange/util/storage"
	"github.com/openaccess/exchange/workers"
	"github.com/spf13/cobra"
	"io"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"time"
)

var (
	dryRun        bool
	statsFile     string
	statusFilter  string
	listDelimiter string
)

var submitCmd = &cobra.Command{
	Use:   "submit <request.json>",
	Short: "Deposit a paper now",
	Long: `Runs the deposit request in the JSON file right away, the way
dep_worker would, and prints the resulting deposit record.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := loadRequest(args[0])
		if err != nil {
			return err
		}
		if dryRun {
			request.DryRun = true
		}
		if err := _context.OpenStore(false); err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		worker := workers.NewDepositWorker(_context)
		record := worker.Process(ctx, workers.NewDepositTask(request, nil))
		return printJson(cmd.OutOrStdout(), record)
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue <request.json>",
	Short: "Queue a deposit request for dep_worker",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		request, err := loadRequest(args[0])
		if err != nil {
			return err
		}
		if dryRun {
			request.DryRun = true
		}
		return queueRequest(cmd.OutOrStdout(), request)
	},
}

// queueRequest publishes request to the deposit topic. It needs
// only the repositories and nsqd, so it works while dep_worker
// holds the deposit database.
func queueRequest(w io.Writer, request *models.DepositRequest) error {
	if _context.Repository(request.RepositoryId) == nil {
		return fmt.Errorf("Repository %d is not configured", request.RepositoryId)
	}
	topic := _context.Config.DepositWorker.NsqTopic
	if topic == "" {
		topic = constants.DepositTopic
	}
	if err := _context.NSQClient.Enqueue(topic, request); err != nil {
		return err
	}
	_context.MessageLog.Infof("Queued request %s for paper %d in topic %s",
		request.RequestId, request.Paper.Id, topic)
	fmt.Fprintf(w, "Queued request %s in %s\n", request.RequestId, topic)
	if nsqStats, err := _context.NSQClient.GetStats(); err == nil {
		if topicStats := nsqStats.GetTopic(topic); topicStats != nil {
			fmt.Fprintf(w, "%d requests waiting in %s\n", topicStats.Depth, topic)
		}
	}
	return nil
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask repositories about the status of earlier deposits",
	Long: `Asks each repository about the deposits that may still change,
and saves the new statuses. Refresh writes to the deposit database,
so dep_worker must not be running.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := _context.OpenStore(false); err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()
		refreshStats := workers.NewStatusRefresher(_context).Run(ctx)
		fmt.Fprintln(cmd.OutOrStdout(), refreshStats.Summary())
		for _, message := range refreshStats.Errors {
			fmt.Fprintln(cmd.ErrOrStderr(), message)
		}
		path := statsFile
		if path == "" && _context.Config.StatsDirectory != "" {
			path = filepath.Join(_context.Config.StatsDirectory,
				fmt.Sprintf("refresh_%s.json", time.Now().UTC().Format("20060102T150405")))
		}
		if path != "" {
			if err := dumpStats(refreshStats, path); err != nil {
				return err
			}
			_context.MessageLog.Infof("Wrote stats to %s", path)
		}
		if refreshStats.HasErrors() {
			return fmt.Errorf("%d deposits could not be refreshed", len(refreshStats.Errors))
		}
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List deposit records as CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		delimiter := []rune(listDelimiter)
		if len(delimiter) != 1 {
			return fmt.Errorf("Delimiter must be a single character")
		}
		if err := _context.OpenStore(true); err != nil {
			return err
		}
		return listRecords(cmd.OutOrStdout(), _context.Store, statusFilter, delimiter[0])
	},
}

func init() {
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Go through the deposit without sending anything")
	queueCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Ask dep_worker for a dry run")
	refreshCmd.Flags().StringVar(&statsFile, "stats", "", "Path to file where we should dump JSON stats")
	listCmd.Flags().StringVar(&statusFilter, "status", "", "Only list deposits with this status")
	listCmd.Flags().StringVar(&listDelimiter, "delimiter", ",", "CSV field delimiter")
}

func loadRequest(path string) (*models.DepositRequest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return models.DepositRequestFromJson(data)
}

func dumpStats(refreshStats *stats.RefreshStats, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return refreshStats.DumpToFile(path)
}

// listRecords writes the records in store as CSV, with a header row.
// An empty status lists them all.
func listRecords(w io.Writer, store *storage.BoltDB, status string, delimiter rune) error {
	if status != "" && !util.StringListContains(constants.DepositStatusTypes, status) {
		return fmt.Errorf("Unknown deposit status '%s'", status)
	}
	writer := csv.NewWriter(w)
	writer.Comma = delimiter
	if err := writer.Write(models.DepositRecordCSVHeaders); err != nil {
		return err
	}
	err := store.ForEach(func(record *models.DepositRecord) error {
		if status != "" && record.Status != status {
			return nil
		}
		return writer.Write(record.ToStringArray())
	})
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func printJson(w io.Writer, obj interface{}) error {
	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// signalContext is cancelled on interrupt, so a deposit or refresh
// stops between remote calls.
func signalContext() (stdcontext.Context, stdcontext.CancelFunc) {
	return signal.NotifyContext(stdcontext.Background(), os.Interrupt)
}
