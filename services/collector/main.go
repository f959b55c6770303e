package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/iulianpascalau/speaker-monitoring/commonGo"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/config"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/factory"
	"github.com/iulianpascalau/speaker-monitoring/services/collector/poller"
	"github.com/multiversx/mx-chain-core-go/core/check"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "collector"
	logFileLifeSpanInSec = 86400 // 24h
	logFileLifeSpanInMB  = 1024  // 1GB
	envInfluxToken       = "INFLUXDB_V2_TOKEN"
	envInfluxURL         = "INFLUXDB_V2_URL"
	envInfluxOrg         = "INFLUXDB_V2_ORG"

	exitCodeStatusNotOK = 1
	exitCodeFailure     = 2
)

// appVersion should be populated at build time using ldflags
// Usage examples:
// Linux/macOS:
//
//	go build -v -ldflags="-X main.appVersion=$(git describe --all | cut -c7-32)
var appVersion = "undefined"
var fileLogging commonGo.FileLoggingHandler

var (
	helpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`

	log = logger.GetOrCreate("collector")

	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,reporter:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the reporter package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	// logSaveFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
	// workingDirectory defines a flag for the path for the working directory.
	workingDirectory = cli.StringFlag{
		Name:  "working-directory",
		Usage: "This flag specifies the `directory` where the collector will store its logs.",
		Value: "",
	}
	// configFile defines the path of the TOML configuration
	configFile = cli.StringFlag{
		Name:  "config",
		Usage: "The `filepath` of the TOML configuration file.",
		Value: "./config.toml",
	}
	// envFile defines the path of the optional .env file holding the InfluxDB secrets
	envFile = cli.StringFlag{
		Name:  "env-file",
		Usage: "The `filepath` of the optional .env file. " + envInfluxToken + ", " + envInfluxURL + " and " + envInfluxOrg + " override the config file.",
		Value: "./.env",
	}
	// dryRun only logs the metric line
	dryRun = cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Boolean option for fetching and logging the metric line without writing it.",
	}
)

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = helpTemplate
	app.Name = "Speaker bandwidth collector"
	app.Version = fmt.Sprintf("%s/%s/%s-%s", appVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	app.Usage = "This is a single-shot collector that writes the speaker's bridge interface counters into InfluxDB"
	app.Flags = []cli.Flag{
		logLevel,
		logSaveFile,
		workingDirectory,
		configFile,
		envFile,
		dryRun,
	}
	app.Authors = []cli.Author{
		{
			Name:  "Iulian Pascalau",
			Email: "iulian.pascalau@gmail.com",
		},
	}

	app.Action = run

	err := app.Run(os.Args)
	if fileLogging != nil {
		_ = fileLogging.Close()
	}
	if err != nil {
		log.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, poller.ErrStatusNotOK) {
		return exitCodeStatusNotOK
	}

	return exitCodeFailure
}

func run(ctx *cli.Context) error {
	saveLogFile := ctx.GlobalBool(logSaveFile.Name)
	workingDir := ctx.GlobalString(workingDirectory.Name)

	err := logger.SetLogLevel(ctx.GlobalString(logLevel.Name))
	if err != nil {
		return err
	}

	fileLogging, err = commonGo.AttachFileLogger(log, defaultLogsPath, logFilePrefix, saveLogFile, workingDir)
	if err != nil {
		return err
	}

	if !check.IfNil(fileLogging) {
		timeLogLifeSpan := time.Second * time.Duration(logFileLifeSpanInSec)
		sizeLogLifeSpanInMB := uint64(logFileLifeSpanInMB)
		err = fileLogging.ChangeFileLifeSpan(timeLogLifeSpan, sizeLogLifeSpanInMB)
		if err != nil {
			return err
		}
	}

	log.Debug("starting collector", "version", appVersion, "pid", os.Getpid())

	cfg, err := loadConfig(ctx.GlobalString(configFile.Name), ctx.GlobalString(envFile.Name))
	if err != nil {
		return err
	}

	handler, err := factory.NewComponentsHandler(*cfg)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if ctx.GlobalBool(dryRun.Name) {
		line, errBuild := handler.GetEngine().BuildLine(runCtx)
		if errBuild != nil {
			return errBuild
		}

		log.Info("dry run, metric line not written", "line", line)
		return nil
	}

	return handler.Run(runCtx)
}

func loadConfig(configPath string, envPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	envOverrides := map[string]string{
		envInfluxToken: "",
		envInfluxURL:   "",
		envInfluxOrg:   "",
	}
	err = commonGo.ReadEnvFile(envPath, envOverrides)
	if err != nil {
		return nil, err
	}

	applyOverride(&cfg.Influx2.Token, envOverrides[envInfluxToken])
	applyOverride(&cfg.Influx2.URL, envOverrides[envInfluxURL])
	applyOverride(&cfg.Influx2.Org, envOverrides[envInfluxOrg])

	err = cfg.Validate()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyOverride(target *string, value string) {
	if len(value) > 0 {
		*target = value
	}
}
