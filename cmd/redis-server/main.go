package main

import (
	"flag"
	"net/http"
	_ "net/http/pprof"
	"strings"
	"time"

	"github.com/vredis/vredis/internal/kvserver"
	"github.com/vredis/vredis/internal/logging"
)

func main() {
	var (
		host          string
		port          string
		multicore     bool
		reusePort     bool
		pprofDebug    bool
		pprofAddr     string
		logStdout     bool
		logLevel      string
		logFile       string
		sweep         bool
		sweepInterval time.Duration
	)

	flag.StringVar(&host, "host", "127.0.0.1", "server bind host")
	flag.StringVar(&port, "port", "6379", "server bind port")
	flag.BoolVar(&multicore, "multicore", true, "enable multicore support")
	flag.BoolVar(&reusePort, "reusePort", false, "enable port reuse")
	flag.BoolVar(&pprofDebug, "pprofDebug", false, "enable pprof debugging")
	flag.StringVar(&pprofAddr, "pprofAddr", ":8888", "pprof address")
	flag.BoolVar(&logStdout, "logStdout", true, "log to stdout instead of a rotated file")
	flag.StringVar(&logLevel, "logLevel", "info", "log level: debug, info, warn, error")
	flag.StringVar(&logFile, "logFile", "", "rotated log file path, used when logStdout is false")
	flag.BoolVar(&sweep, "sweep", false, "enable the background expiry sweep")
	flag.DurationVar(&sweepInterval, "sweepInterval", time.Second, "background expiry sweep interval")
	flag.Parse()

	logger := logging.New(logging.Options{
		Stdout:   logStdout || logFile == "",
		Level:    logLevel,
		Filename: logFile,
	})
	defer logger.Sync()

	if pprofDebug {
		go func() {
			logger.Sugar().Infof("pprof listening at %s", pprofAddr)
			logger.Sugar().Error(http.ListenAndServe(pprofAddr, nil))
		}()
	}

	opts := []kvserver.Option{kvserver.WithLogger(logger)}
	if sweep {
		opts = append(opts, kvserver.WithBackgroundSweep(sweepInterval, 4))
	}
	server := kvserver.New(opts...)

	logger.Sugar().Infof("starting redis-server at %s", buildAddr(host, port))

	engineOpts := kvserver.EngineOptions{
		Multicore: multicore,
		ReusePort: reusePort,
	}
	if err := server.Run(host, port, engineOpts); err != nil {
		logger.Sugar().Fatalf("server stopped: %v", err)
	}
}

func buildAddr(host, port string) string {
	if strings.Contains(host, ":") {
		return "[" + host + "]:" + port
	}
	return host + ":" + port
}
