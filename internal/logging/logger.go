package logging

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/2beens/workoutwrapped/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "workoutwrapped.log"

type LoggerSetupParams struct {
	LogsPath         string
	LogToStdout      bool
	LogLevel         string
	LogFormatJSON    bool
	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. The returned func closes the log file, if any.
func Setup(params LoggerSetupParams) func() {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if params.SentryEnabled {
		err := sentry.Init(sentry.ClientOptions{
			Environment:      params.Environment,
			Dsn:              params.SentryDSN,
			TracesSampleRate: 1.0,
			ServerName:       params.SentryServerName,
		})
		if err != nil {
			logrus.Errorf("sentry.Init: %s", err)
		} else {
			logrus.AddHook(NewSentryHook([]logrus.Level{
				logrus.PanicLevel,
				logrus.FatalLevel,
				logrus.ErrorLevel,
			}))
			logrus.Infoln("sentry set up successfully")
		}
	}

	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.LogsPath == "" {
		logrus.SetOutput(os.Stdout)
		logrus.Println("writing logs only to STDOUT")
		return func() {}
	}

	if err := pkg.EnsureDir(params.LogsPath); err != nil {
		logrus.SetOutput(os.Stdout)
		logrus.Errorf("cannot use logs path %s, writing to STDOUT: %s", params.LogsPath, err)
		return func() {}
	}

	lumberJackLogger := &lumberjack.Logger{
		Filename:   filepath.Join(params.LogsPath, logFileName),
		MaxSize:    50, // megabytes
		MaxBackups: 10,
		LocalTime:  false, // false -> use UTC
		Compress:   true,
	}

	var output *pkg.CombinedWriter
	if params.LogToStdout {
		logrus.Println("writing logs to file and STDOUT")
		output = pkg.NewCombinedWriter(os.Stdout, lumberJackLogger)
	} else {
		output = pkg.NewCombinedWriter(lumberJackLogger)
	}
	logrus.SetOutput(output)

	return func() {
		logrus.SetOutput(os.Stdout)
		if err := lumberJackLogger.Close(); err != nil {
			logrus.Errorf("close log file: %s", err)
		}
	}
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
