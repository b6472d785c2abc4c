package log

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/sociolens/sociolens/utils/flag"
)

// global accessible logger
var (
	logger *logrus.Logger
	Log    *logrus.Entry
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	InitLogger()
}

func InitLogger() {
	logger = logrus.New()

	// Log to stderr. In production we emit JSON so the log shipper can parse
	// fields, in development we keep the human readable text formatter.
	logger.SetOutput(os.Stderr)
	if os.Getenv("SOCIOLENS_ENV") == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	Log = logger.WithFields(
		logrus.Fields{"service": flag.ServiceName, "is_development": os.Getenv("SOCIOLENS_ENV") != "prod"},
	)
}
