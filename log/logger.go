package log

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Logger interface {
	Log(format string, a ...interface{})

	// Dump logs title followed by what write produces, indented by one
	// level. write isn't called when logging is disabled.
	Dump(title string, write func(w io.Writer))
}

var (
	_ Logger = &logger{}
	_ Logger = &nopLogger{}
)

type logger struct {
	w io.Writer
}

func NewLogger(w io.Writer) (*logger, error) {
	if w == nil {
		return nil, fmt.Errorf("w is nil; NewLogger() needs a writer")
	}
	return &logger{
		w: w,
	}, nil
}

func (l *logger) Log(format string, a ...interface{}) {
	fmt.Fprintf(l.w, format+"\n", a...)
}

func (l *logger) Dump(title string, write func(w io.Writer)) {
	var b strings.Builder
	write(&b)
	fmt.Fprintf(l.w, "%v:\n", title)
	s := bufio.NewScanner(strings.NewReader(b.String()))
	for s.Scan() {
		fmt.Fprintf(l.w, "  %v\n", s.Text())
	}
}

type nopLogger struct {
}

func NewNopLogger() *nopLogger {
	return &nopLogger{}
}

func (l *nopLogger) Log(format string, a ...interface{}) {
}

func (l *nopLogger) Dump(title string, write func(w io.Writer)) {
}
