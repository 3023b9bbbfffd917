// Package audit provides the best-effort mutation log. Entries are queued on
// a buffered channel and written to the audit_logs collection by a background
// worker; recording never blocks a caller and failures are never surfaced.
package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/store"
)

// Entry is a single appended audit record.
type Entry struct {
	Collection string         `bson:"collection"`
	DocumentID string         `bson:"document_id"`
	Action     string         `bson:"action"`
	Payload    map[string]any `bson:"payload,omitempty"`
	ActorID    string         `bson:"actor_id"`
	Timestamp  time.Time      `bson:"timestamp"`
}

// Sink receives audit entries. Implementations must not block.
type Sink interface {
	Record(entry Entry)
}

// NopSink discards every entry.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(Entry) {}

const writeTimeout = 10 * time.Second

// Recorder is the store-backed Sink. Close drains the queue.
type Recorder struct {
	store     store.Store
	entries   chan Entry
	logger    *zap.Logger
	now       func() time.Time
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder starts the background writer. bufferSize bounds the number of
// pending entries; once full, new entries are dropped with a local log line.
func NewRecorder(st store.Store, bufferSize int, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if bufferSize <= 0 {
		bufferSize = 256
	}

	r := &Recorder{
		store:   st,
		entries: make(chan Entry, bufferSize),
		logger:  logger,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go r.drain()

	return r
}

// Record implements Sink. The entry's timestamp is stamped here when unset.
// Entries recorded after Close are dropped.
func (r *Recorder) Record(entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.logger.Warn("audit recorder closed, dropping entry",
			zap.String("collection", entry.Collection),
			zap.String("action", entry.Action),
			zap.String("document_id", entry.DocumentID))
		return
	}

	select {
	case r.entries <- entry:
	default:
		r.logger.Warn("audit buffer full, dropping entry",
			zap.String("collection", entry.Collection),
			zap.String("action", entry.Action),
			zap.String("document_id", entry.DocumentID))
	}
}

// Close stops accepting entries and waits for the queue to flush.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.entries)
		r.mu.Unlock()
		<-r.done
	})
}

func (r *Recorder) drain() {
	defer close(r.done)

	for entry := range r.entries {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		_, err := r.store.Insert(ctx, store.CollectionAuditLogs, entry)
		cancel()
		if err != nil {
			r.logger.Warn("failed to write audit entry",
				zap.String("collection", entry.Collection),
				zap.String("action", entry.Action),
				zap.Error(err))
		}
	}
}
