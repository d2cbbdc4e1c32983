package nlog

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

type Logger interface {
	Logf(format string, v ...any)
}

type subsystemLogger struct {
	subsystem string
	logger    *AppLogger
}

func (s *subsystemLogger) Logf(format string, v ...any) {
	s.logger.Logf(s.subsystem, format, v...)
}

type logEntry struct {
	subsystem string
	formatted string
}

// AppLogger fans log lines out to one file per subsystem. Writes go through
// a buffered inbox so the hot paths never block on disk; Run drains it.
type AppLogger struct {
	dir string
	seq atomic.Uint64

	fileMapper map[string]*os.File
	logMapper  map[string]*log.Logger

	lock           sync.RWMutex
	currentLogFunc func(*log.Logger, string, ...any)

	inbox chan logEntry
}

func NewAppLogger(dir string, logging bool) (*AppLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	a := &AppLogger{
		dir:            dir,
		fileMapper:     make(map[string]*os.File),
		logMapper:      make(map[string]*log.Logger),
		currentLogFunc: nilLogf,
		inbox:          make(chan logEntry, 600),
	}

	if logging {
		a.currentLogFunc = defaultLogf
	}

	return a, nil
}

func (a *AppLogger) RegisterSubsystem(subsystem string) (Logger, error) {
	file, err := os.OpenFile(filepath.Join(a.dir, subsystem+".log"), os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return nil, err
	}

	a.lock.Lock()
	defer a.lock.Unlock()
	a.logMapper[subsystem] = log.New(file, fmt.Sprintf("[%s]: ", subsystem), log.Ldate|log.Ltime)
	a.fileMapper[subsystem] = file
	return &subsystemLogger{subsystem, a}, nil
}

func (a *AppLogger) GetSubsystemLogger(subsystem string) (Logger, error) {
	a.lock.RLock()
	defer a.lock.RUnlock()

	if _, ok := a.logMapper[subsystem]; !ok {
		return nil, fmt.Errorf("The subsystem was not registered")
	}
	return &subsystemLogger{subsystem, a}, nil
}

func (a *AppLogger) EnableLogging() {
	a.lock.Lock()
	a.currentLogFunc = defaultLogf
	a.lock.Unlock()
}

func (a *AppLogger) DisableLogging() {
	a.lock.Lock()
	a.currentLogFunc = nilLogf
	a.lock.Unlock()
}

func (a *AppLogger) Logf(subsystem, format string, v ...any) {
	a.inbox <- logEntry{subsystem, fmt.Sprintf(fmt.Sprintf("{%d}. %s", a.seq.Add(1), format), v...)}
}

func (a *AppLogger) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-a.inbox:
			a.actualWrite(msg.subsystem, msg.formatted)
		}
	}
}

func (a *AppLogger) actualWrite(subsystem, formatted string) error {
	a.lock.Lock()
	logFunc := a.currentLogFunc
	logger, ok := a.logMapper[subsystem]
	a.lock.Unlock()

	if !ok {
		return fmt.Errorf("Logger is not setup for this subsystem")
	}
	if logFunc != nil {
		logFunc(logger, formatted)
	}
	return nil
}

func (a *AppLogger) CloseAll() {
	a.lock.Lock()
	defer a.lock.Unlock()

	for _, file := range a.fileMapper {
		file.Sync()
		file.Close()
	}
	clear(a.fileMapper)
	clear(a.logMapper)
}

func defaultLogf(l *log.Logger, format string, a ...any) {
	l.Printf(format, a...)
}

func nilLogf(*log.Logger, string, ...any) {}
