// logging.go
// Copyright (C) 2025 Karol Będkowski <Karol Będkowski@kkomp>
//
// Distributed under terms of the GPLv3 license.
package cli

import (
	"fmt"
	"io"
	stdlog "log"
	"log/syslog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/journald"
	"github.com/rs/zerolog/log"
	"gitlab.com/kabes/go-chat/internal/aerr"
)

const (
	logFormatConsole  = "console"
	logFormatLogfmt   = "logfmt"
	logFormatJSON     = "json"
	logFormatSyslog   = "syslog"
	logFormatJournald = "journald"
)

type logWriterFactory func(out *os.File) (io.Writer, error)

//nolint:gochecknoglobals
var logWriters = map[string]logWriterFactory{
	logFormatConsole: func(out *os.File) (io.Writer, error) { return newConsoleWriter(out), nil },
	logFormatLogfmt:  func(out *os.File) (io.Writer, error) { return newLogfmtWriter(out), nil },
	logFormatJSON:    func(out *os.File) (io.Writer, error) { return out, nil },
	logFormatSyslog: func(_ *os.File) (io.Writer, error) {
		w, err := syslog.New(syslog.LOG_USER, "gochat")
		if err != nil {
			return nil, aerr.Wrapf(err, "connect to syslog failed")
		}

		return zerolog.SyslogLevelWriter(w), nil
	},
	logFormatJournald: func(_ *os.File) (io.Writer, error) { return journald.NewJournalDWriter(), nil },
}

// initializeLogger set log level and format for server and admin commands;
// logs are written to stderr.
func initializeLogger(level, format string) error {
	return setupLogger(level, format, os.Stderr)
}

// initializeClientLogger configure logging for interactive client. Console
// belongs to user so logs go to `logfile` or are dropped.
func initializeClientLogger(level, logfile string) (io.Closer, error) {
	if logfile == "" {
		zerolog.ErrorMarshalFunc = aerr.ErrorMarshalFunc //nolint:reassign
		log.Logger = zerolog.Nop()
		stdlog.SetOutput(io.Discard)

		return io.NopCloser(nil), nil
	}

	out, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:mnd
	if err != nil {
		return nil, aerr.Wrapf(err, "open log file failed").WithMeta("file", logfile)
	}

	if err := setupLogger(level, logFormatLogfmt, out); err != nil {
		_ = out.Close()

		return nil, err
	}

	return out, nil
}

func setupLogger(level, format string, out *os.File) error {
	zerolog.ErrorMarshalFunc = aerr.ErrorMarshalFunc //nolint:reassign

	format, known := resolveLogFormat(format, out)

	writer, err := logWriters[format](out)
	if err != nil {
		return aerr.Wrapf(err, "init logger failed").WithMeta("format", format)
	}

	log.Logger = log.Output(writer).With().Timestamp().Caller().Logger()

	if !known {
		log.Warn().Msgf("logger: unknown log format; using %q", format)
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		log.Warn().Msgf("logger: unknown log level %q; using debug", level)

		lvl = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(lvl)

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)

	return nil
}

// resolveLogFormat return `format` when known. Otherwise (also when empty)
// return console for terminal and logfmt for other outputs; second result is
// false only for not empty, unknown format.
func resolveLogFormat(format string, out *os.File) (string, bool) {
	if _, ok := logWriters[format]; ok {
		return format, true
	}

	if isTerminal(out) {
		return logFormatConsole, format == ""
	}

	return logFormatLogfmt, format == ""
}

func isTerminal(out *os.File) bool {
	fileInfo, err := out.Stat()

	return err == nil && fileInfo.Mode()&os.ModeCharDevice != 0
}

// newConsoleWriter create human readable writer; colors and short time are
// used only on terminal.
func newConsoleWriter(out *os.File) io.Writer {
	term := isTerminal(out)

	tformat := time.RFC3339
	if term {
		tformat = time.TimeOnly
	}

	return zerolog.ConsoleWriter{ //nolint:exhaustruct
		Out:        out,
		NoColor:    !term,
		TimeFormat: tformat,
	}
}

// newLogfmtWriter create writer producing key=value lines.
func newLogfmtWriter(out io.Writer) io.Writer {
	return zerolog.ConsoleWriter{ //nolint:exhaustruct
		Out:                 out,
		NoColor:             true,
		TimeFormat:          time.RFC3339,
		FormatLevel:         logfmtField("level", false, ""),
		FormatTimestamp:     logfmtField("ts", false, ""),
		FormatMessage:       logfmtField("msg", true, "msg=<nil>"),
		FormatCaller:        logfmtField("caller", false, "UNKNOWN"),
		FormatErrFieldValue: logfmtField("", true, "<nil>"),
	}
}

// logfmtField return formatter writing `key=value`. Value is quoted when
// `quote` is set or when it contains space or quote char; `nilout` is written
// as is for missing value.
func logfmtField(key string, quote bool, nilout string) zerolog.Formatter {
	return func(i any) string {
		if i == nil {
			return nilout
		}

		val := fmt.Sprintf("%s", i)
		if quote || strings.ContainsAny(val, " \"") {
			val = strconv.Quote(val)
		}

		if key == "" {
			return val
		}

		return key + "=" + val
	}
}
