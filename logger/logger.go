// Copyright 2014 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// LogLevel is the verbosity a LogSystem accepts, from Silence and the most
// severe (ErrorLevel) to the least severe (DebugDetailLevel).
type LogLevel int

const (
	Silence LogLevel = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
	DebugDetailLevel
)

// LogSystem is a sink a Logger can fan a formatted line out to (stdout,
// a rotating file, a JSON stream, an mlog stream). AddLogSystem registers
// one globally; every Logger writes through all registered systems.
type LogSystem interface {
	LogPrint(level LogLevel, tag string, msg string)
}

var (
	logSystemsMu sync.RWMutex
	logSystems   []LogSystem
)

// AddLogSystem registers sys to receive every subsequent log line.
func AddLogSystem(sys LogSystem) {
	logSystemsMu.Lock()
	logSystems = append(logSystems, sys)
	logSystemsMu.Unlock()
}

func dispatch(level LogLevel, tag, msg string) {
	logSystemsMu.RLock()
	defer logSystemsMu.RUnlock()
	if len(logSystems) == 0 {
		fmt.Fprintf(os.Stdout, "[%s] %s\n", tag, msg)
		return
	}
	for _, sys := range logSystems {
		sys.LogPrint(level, tag, msg)
	}
}

type stdLogSystem struct {
	w     io.Writer
	level LogLevel
}

// NewStdLogSystem writes plain "[tag] message" lines at or below level to w.
// flags is accepted for signature compatibility with the standard library's
// log package conventions and currently unused.
func NewStdLogSystem(w io.Writer, flags int, level LogLevel) LogSystem {
	return &stdLogSystem{w: w, level: level}
}

func (s *stdLogSystem) LogPrint(level LogLevel, tag string, msg string) {
	if level > s.level {
		return
	}
	fmt.Fprintf(s.w, "[%s] %s\n", tag, msg)
}

type mlogSystem struct {
	w             io.Writer
	level         LogLevel
	withTimestamp bool
}

// NewMLogSystem writes raw mlog lines (already-formatted by MLogT.String)
// to w, one per Sendf call.
func NewMLogSystem(w io.Writer, flags int, level LogLevel, withTimestamp bool) LogSystem {
	return &mlogSystem{w: w, level: level, withTimestamp: withTimestamp}
}

func (s *mlogSystem) LogPrint(level LogLevel, tag string, msg string) {
	fmt.Fprintln(s.w, msg)
}

type jsonLogSystem struct{ w io.Writer }

// NewJsonLogSystem writes each line as a JSON object with tag and msg fields.
func NewJsonLogSystem(w io.Writer) LogSystem {
	return &jsonLogSystem{w: w}
}

func (s *jsonLogSystem) LogPrint(level LogLevel, tag string, msg string) {
	fmt.Fprintf(s.w, "{\"tag\":%q,\"msg\":%q}\n", tag, msg)
}

// Logger prefixes every line with a component tag (e.g. "discover") and
// fans it out to every registered LogSystem.
type Logger struct {
	tag string
}

// NewLogger returns a Logger tagged with the given component name.
func NewLogger(tag string) *Logger {
	return &Logger{tag: tag}
}

func (l *Logger) log(level LogLevel, args ...interface{}) {
	dispatch(level, l.tag, fmt.Sprint(args...))
}

func (l *Logger) logf(level LogLevel, format string, args ...interface{}) {
	dispatch(level, l.tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorln(args ...interface{}) { l.log(ErrorLevel, args...) }
func (l *Logger) Warnln(args ...interface{})  { l.log(WarnLevel, args...) }
func (l *Logger) Infoln(args ...interface{})  { l.log(InfoLevel, args...) }
func (l *Logger) Debugln(args ...interface{}) { l.log(DebugLevel, args...) }

func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(ErrorLevel, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(WarnLevel, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(InfoLevel, format, args...) }
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(DebugLevel, format, args...) }

// Sendf writes a pre-formatted line (an mlog line, typically) at DebugLevel.
// calldepth is accepted for drop-in compatibility with log.Output-style
// callers and is otherwise unused since dispatch does not report caller
// position.
func (l *Logger) Sendf(calldepth int, format string, args ...interface{}) {
	l.logf(DebugLevel, format, args...)
}
