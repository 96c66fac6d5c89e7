package main

import (
	stdcontext "context"
	"flag"
	"fmt"
	"github.com/openaccess/exchange/context"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/service"
	"github.com/openaccess/exchange/workers"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// dep_worker reads deposit requests from NSQ and deposits each paper
// into the repository the request names. Every attempt is saved in
// the deposit database and written to the JSON log.
func main() {
	pathToConfigFile := parseCommandLine()
	config, err := models.LoadConfigFile(pathToConfigFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	_context, err := context.NewContext(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	defer _context.Close()
	_context.MessageLog.Infof("Connecting to NSQLookupd at %s", _context.Config.NsqLookupd)
	_context.MessageLog.Infof("NSQDHttpAddress is %s", _context.Config.NsqdHttpAddress)
	consumer, err := workers.CreateNsqConsumer(_context.Config, &_context.Config.DepositWorker)
	if err != nil {
		_context.MessageLog.Fatalf("%v", err)
	}
	_context.MessageLog.Infof("dep_worker started with config %s", _context.Config.ActiveConfig)
	_context.MessageLog.Infof("Serving %d repositories with protocols %v",
		len(_context.Repositories), _context.Registry.Identifiers())

	var metricsService *service.MetricsService
	if _context.Config.MetricsPort > 0 {
		metricsService = service.NewMetricsService(_context.Config.MetricsPort,
			_context.MetricsRegistry, _context.MessageLog)
		go func() {
			if err := metricsService.Serve(); err != nil {
				_context.MessageLog.Errorf("Metrics service stopped: %v", err)
			}
		}()
	}

	depositWorker := workers.NewDepositWorker(_context)
	consumer.AddHandler(depositWorker)
	if err := consumer.ConnectToNSQLookupd(_context.Config.NsqLookupd); err != nil {
		_context.MessageLog.Fatalf("Cannot connect to NSQLookupd: %v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		_context.MessageLog.Infof("Stopping NSQ consumer")
		consumer.Stop()
	}()

	// This blocks until the consumer stops, so our program does not exit.
	<-consumer.StopChan
	_context.LogStats()
	if metricsService != nil {
		ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 5*time.Second)
		defer cancel()
		metricsService.Shutdown(ctx)
	}
}

func parseCommandLine() (configFile string) {
	var pathToConfigFile string
	flag.StringVar(&pathToConfigFile, "config", "", "Path to deposit config file")
	flag.Parse()
	if pathToConfigFile == "" {
		printUsage()
		os.Exit(1)
	}
	return pathToConfigFile
}

// Tell the user about the program.
func printUsage() {
	message := `
dep_worker: Deposits papers into open repositories, as requested
through NSQ. Requests are read from the topic and channel named in
the DepositWorker section of the config file.

Usage: dep_worker -config=<path to deposit config file>

Param -config is required.
`
	fmt.Println(message)
}
