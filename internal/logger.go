package internal

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// LogOptions configures the Logger sinks.
type LogOptions struct {
	Level  string // debug, info, warn, error
	Format string // text or plain
	File   string // when set, both streams append here

	// Out and Err default to stdout and stderr.
	Out io.Writer
	Err io.Writer
}

// Logger serializes informational and error messages onto two streams.
// One instance is built in main and handed to every component; the underlying
// sinks are created on first use, at most once.
type Logger struct {
	opts LogOptions

	once sync.Once
	mu   sync.Mutex
	info *logrus.Logger
	errs *logrus.Logger
	file *os.File
}

func NewLogger(opts LogOptions) *Logger {
	return &Logger{opts: opts}
}

func (l *Logger) build() {
	out, errOut := l.opts.Out, l.opts.Err
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}

	var fileErr error
	if l.opts.File != "" {
		f, err := os.OpenFile(l.opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			l.file = f
			out, errOut = f, f
		} else {
			fileErr = err
		}
	}

	level, levelErr := logrus.ParseLevel(l.opts.Level)
	if l.opts.Level == "" || levelErr != nil {
		level = logrus.InfoLevel
	}

	l.info = newSink(out, level, l.opts.Format)
	l.errs = newSink(errOut, level, l.opts.Format)

	if fileErr != nil {
		l.errs.Warnf("Failed to open log file %s, logging to console: %v", l.opts.File, fileErr)
	}
	if l.opts.Level != "" && levelErr != nil {
		l.errs.Warnf("Unknown log level %q, using info", l.opts.Level)
	}
}

func newSink(w io.Writer, level logrus.Level, format string) *logrus.Logger {
	lg := logrus.New()
	lg.SetOutput(w)
	lg.SetLevel(level)
	// Logger.mu already serializes every write.
	lg.SetNoLock()
	if format == "plain" {
		lg.SetFormatter(plainFormatter{})
		return lg
	}
	lg.SetFormatter(&logrus.TextFormatter{
		ForceColors:   isTerminal(w),
		DisableColors: !isTerminal(w),
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	return lg
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (l *Logger) log(level logrus.Level, fields logrus.Fields, msg string) {
	l.once.Do(l.build)

	sink := l.info
	if level <= logrus.WarnLevel {
		sink = l.errs
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(fields) > 0 {
		sink.WithFields(fields).Log(level, msg)
		return
	}
	sink.Log(level, msg)
}

func (l *Logger) Info(msg string) { l.log(logrus.InfoLevel, nil, msg) }

func (l *Logger) Infof(format string, args ...any) {
	l.log(logrus.InfoLevel, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Debugf(format string, args ...any) {
	l.log(logrus.DebugLevel, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(format string, args ...any) {
	l.log(logrus.WarnLevel, nil, fmt.Sprintf(format, args...))
}

func (l *Logger) Error(msg string) { l.log(logrus.ErrorLevel, nil, msg) }

func (l *Logger) Errorf(format string, args ...any) {
	l.log(logrus.ErrorLevel, nil, fmt.Sprintf(format, args...))
}

// ErrorFields logs msg on the error stream with structured fields.
func (l *Logger) ErrorFields(fields logrus.Fields, msg string) {
	l.log(logrus.ErrorLevel, fields, msg)
}

// Locked wraps w so each write holds the logger lock. Output sharing a stream
// with log lines, like the progress bar, never lands inside a log line.
func (l *Logger) Locked(w io.Writer) io.Writer {
	return &lockedWriter{l: l, w: w}
}

type lockedWriter struct {
	l *Logger
	w io.Writer
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.l.mu.Lock()
	defer lw.l.mu.Unlock()
	return lw.w.Write(p)
}

// Close releases the log file, if any. Safe to call when nothing was logged.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// plainFormatter writes "INFO: msg key=value".
type plainFormatter struct{}

func (plainFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	switch e.Level {
	case logrus.WarnLevel:
		b.WriteString("WARN")
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		b.WriteString("ERROR")
	case logrus.DebugLevel, logrus.TraceLevel:
		b.WriteString("DEBUG")
	default:
		b.WriteString("INFO")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Data))
	for k := range e.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
