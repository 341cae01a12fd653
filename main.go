package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/leaguehq/matchops/config"
)

// AppVersion is the version string of this application
type AppVersion string

// GetAppVersion provides the current version of the project
func GetAppVersion() AppVersion {
	return "1.0.0"
}

var (
	exit = func(code int) {
		os.Exit(code)
	}
	consolePrintln = func(output string) {
		fmt.Fprintln(os.Stderr, output)
	}
	serverShutdownTimeout = 15 * time.Second

	parseArgs = func(programName string, args []string) (cliConfig *config.CLIConfig, output string, err error) {
		flags := flag.NewFlagSet(programName, flag.ContinueOnError)
		var buf bytes.Buffer
		flags.SetOutput(&buf)

		cliConfig = &config.CLIConfig{}
		flags.StringVar(&cliConfig.ConfigPath, "config", "", "Config file location")
		flags.BoolVar(&cliConfig.StopOnConfigChange, "stop-on-conf-change", false, "Restart internally on config change if this flag is absent")
		flags.BoolVar(&cliConfig.DoNotWatchConfigChange, "do-not-watch-conf-change", false, "Do not watch config change")

		err = flags.Parse(args)
		if err != nil {
			return nil, buf.String(), err
		}
		if len(cliConfig.ConfigPath) > 0 {
			if _, statErr := os.Stat(cliConfig.ConfigPath); statErr != nil {
				return nil, "Could not find config file - " + cliConfig.ConfigPath, statErr
			}
		}
		return cliConfig, buf.String(), nil
	}
)

func setupLogger(logConfig config.LogConfig) {
	if logConfig.IsLoggerConfigAvailable() {
		log.Logger = log.Output(&lumberjack.Logger{
			Filename:   logConfig.GetLogFilename(),
			MaxSize:    int(logConfig.GetMaxLogFileSize()),
			MaxBackups: int(logConfig.GetMaxLogBackups()),
			MaxAge:     int(logConfig.GetMaxAgeForALogFile()),
			Compress:   logConfig.IsCompressionEnabledOnLogBackups(),
		})
	}
}

func startService(cliConfig *config.CLIConfig) *ServiceContainer {
	serviceContainer, err := GetServiceContainer(cliConfig)
	if err != nil {
		log.Error().Err(err).Msg("could not initialize the application")
		exit(3)
	}
	setupLogger(serviceContainer.Configuration)
	if err := serviceContainer.HealthService.Start(); err != nil {
		log.Error().Err(err).Msg("could not start the queue health service")
		exit(4)
	}
	return serviceContainer
}

func stopService(serviceContainer *ServiceContainer) {
	serviceContainer.HealthService.Stop()
	if serviceContainer.ExportService != nil {
		if err := serviceContainer.ExportService.Close(); err != nil {
			log.Error().Err(err).Msg("could not close the snapshot archive")
		}
	}
}

func main() {
	cliConfig, output, err := parseArgs(os.Args[0], os.Args[1:])
	if err == flag.ErrHelp {
		consolePrintln(output)
		exit(0)
	}
	if err != nil {
		consolePrintln(output)
		exit(1)
	}
	log.Print("MatchOps - ", GetAppVersion())

	serviceContainer := startService(cliConfig)
	restarting := make(chan bool, 1)
	cliConfig.NotifyOnConfigFileChange(func() {
		log.Print("Config file changed, restarting the app")
		if !cliConfig.StopOnConfigChange {
			restarting <- true
		}
		shutdownContext, cancelFunc := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancelFunc()
		serviceContainer.Server.Shutdown(shutdownContext)
		stopService(serviceContainer)
		if cliConfig.StopOnConfigChange {
			exit(0)
		}
		// Signal the old listener only after the swap so the wait loop below
		// observes the new container when it re-reads serviceContainer
		oldContainer := serviceContainer
		serviceContainer = startService(cliConfig)
		oldContainer.Listener.ServerShutdownCompleted()
	})

	for {
		<-serviceContainer.Listener.shutdownListener
		select {
		case <-restarting:
			continue
		default:
		}
		break
	}
	stopService(serviceContainer)
	cliConfig.StopWatcher()
	log.Print("MatchOps stopped")
}
