package logflags

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

var binary = false
var pcln = false
var classifier = false
var scan = false

var logOut io.WriteCloser

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Formatter = &logrus.TextFormatter{DisableColors: logOut != nil}
	if logOut != nil {
		logger.Logger.Out = logOut
	} else {
		logger.Logger.Out = colorable.NewColorableStderr()
	}
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.PanicLevel
	}
	return logger
}

// Binary returns true if the binary analysis layer should log.
func Binary() bool {
	return binary
}

// BinaryLogger returns a logger for the build-info and orchestration layer.
func BinaryLogger() *logrus.Entry {
	return makeLogger(binary, logrus.Fields{"layer": "binary"})
}

// Pcln returns true if pclntab decoding should log.
func Pcln() bool {
	return pcln
}

// PclnLogger returns a logger for pclntab decoding.
func PclnLogger() *logrus.Entry {
	return makeLogger(pcln, logrus.Fields{"layer": "pclntab"})
}

// Classifier returns true if path classification should log.
func Classifier() bool {
	return classifier
}

// ClassifierLogger returns a logger for the path classifier.
func ClassifierLogger() *logrus.Entry {
	return makeLogger(classifier, logrus.Fields{"layer": "classifier"})
}

// Scan returns true if the directory scanner should log.
func Scan() bool {
	return scan
}

// ScanLogger returns a logger for the directory scanner.
func ScanLogger() *logrus.Entry {
	return makeLogger(scan, logrus.Fields{"layer": "scan"})
}

var errLogstrWithoutLog = errors.New("--log-output specified without --log")

// Setup sets the logging subsystems enabled by the comma-separated list in
// logstr. When logDest is non-empty logs go to the named file, or to the
// inherited file descriptor when it parses as a number.
func Setup(logFlag bool, logstr, logDest string) error {
	if logDest != "" {
		n, err := strconv.Atoi(logDest)
		if err == nil {
			logOut = os.NewFile(uintptr(n), "gobindep-logs")
		} else {
			fh, err := os.Create(logDest)
			if err != nil {
				return fmt.Errorf("could not create log file: %v", err)
			}
			logOut = fh
		}
	}
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	if !logFlag {
		log.SetOutput(io.Discard)
		if logstr != "" {
			return errLogstrWithoutLog
		}
		return nil
	}
	if logstr == "" {
		logstr = "binary"
	}
	for _, logcmd := range strings.Split(logstr, ",") {
		switch logcmd {
		case "binary":
			binary = true
		case "pclntab":
			pcln = true
		case "classifier":
			classifier = true
		case "scan":
			scan = true
		}
	}
	return nil
}

// Close closes the file logs were redirected to, if any.
func Close() {
	if logOut != nil {
		logOut.Close()
	}
}
