package journal

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/clickmapper/clickmapper/internal/models"
	"github.com/clickmapper/clickmapper/pkg/overlay"
)

// Store persists journal records
type Store interface {
	CreateLaunch(event *models.LaunchEvent) error
	CreateErrorLog(errorLog *models.ErrorLog) error
}

type record struct {
	launch   *models.LaunchEvent
	errorLog *models.ErrorLog
}

// Journal records launches of one overlay session. Records are queued and
// written by a background goroutine; when the queue is full new records are
// dropped so the event loop never waits on the database.
type Journal struct {
	store     Store
	clock     clockwork.Clock
	logger    *slog.Logger
	sessionID string

	mu      sync.RWMutex // guards closed against sends on a closed queue
	closed  bool
	queue   chan record
	done    chan struct{}
	dropped atomic.Int64
}

// New starts a journal for a fresh session id
func New(store Store, clock clockwork.Clock, bufferSize int, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	if bufferSize < 1 {
		bufferSize = 1
	}

	j := &Journal{
		store:     store,
		clock:     clock,
		logger:    logger,
		sessionID: uuid.NewString(),
		queue:     make(chan record, bufferSize),
		done:      make(chan struct{}),
	}
	go j.run()
	return j
}

// SessionID identifies this session's rows
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Dropped returns how many records were discarded because the queue was full
func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Launched implements overlay.Observer
func (j *Journal) Launched(kind overlay.LaunchKind, name string, args []string, err error) {
	event := &models.LaunchEvent{
		SessionID: j.sessionID,
		Timestamp: j.clock.Now(),
		Kind:      string(kind),
		Command:   name,
		Args:      strings.Join(args, " "),
	}
	if err != nil {
		event.Failed = true
		event.ErrorMsg = err.Error()
	}
	j.enqueue(record{launch: event})
}

// RecordError queues a fatal session error
func (j *Journal) RecordError(err error) {
	if err == nil {
		return
	}
	j.enqueue(record{errorLog: &models.ErrorLog{
		SessionID: j.sessionID,
		Timestamp: j.clock.Now(),
		ErrorMsg:  err.Error(),
	}})
}

func (j *Journal) enqueue(r record) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		j.dropped.Add(1)
		return
	}

	select {
	case j.queue <- r:
	default:
		j.dropped.Add(1)
	}
}

func (j *Journal) run() {
	defer close(j.done)

	for r := range j.queue {
		var err error
		switch {
		case r.launch != nil:
			err = j.store.CreateLaunch(r.launch)
		case r.errorLog != nil:
			err = j.store.CreateErrorLog(r.errorLog)
		}
		if err != nil {
			j.logger.Warn("Failed to write journal record", "error", err)
		}
	}
}

// Close stops accepting records and waits until queued ones are written
func (j *Journal) Close() {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		<-j.done
		return
	}
	j.closed = true
	close(j.queue)
	j.mu.Unlock()

	<-j.done

	if n := j.Dropped(); n > 0 {
		j.logger.Warn("Journal dropped records", "count", n)
	}
}
