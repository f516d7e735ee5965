package helper

import (
	"os"

	"github.com/phuslu/log"
)

var Log log.Logger = log.Logger{
	Level: logLevel(),
	Writer: &log.ConsoleWriter{
		Writer:      os.Stdout,
		ColorOutput: true,
	},
}

func logLevel() log.Level {
	if os.Getenv("NDPROBE_DEBUG") != "" {
		return log.DebugLevel
	}
	return log.InfoLevel
}
