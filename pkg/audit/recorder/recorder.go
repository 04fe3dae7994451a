package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"oecs-hq/lusaka/pkg/audit"
)

// Config contains configuration for the recorder's durable mirror.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing an entry to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:  1000,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder is one session's append-only audit trail.
type Recorder struct {
	sessionID string
	config    *Config
	logger    *slog.Logger

	mu      sync.RWMutex
	entries []audit.Entry

	// Durable mirror; nil storage disables mirroring.
	storage   audit.Storage
	mirrorCh  chan *audit.Entry
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewRecorder creates a recorder for the given session. storage may be nil,
// in which case entries live only in memory.
func NewRecorder(sessionID string, storage audit.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		sessionID: sessionID,
		config:    config,
		storage:   storage,
		logger:    slog.Default().With("component", "audit.recorder", "session_id", sessionID),
	}

	if storage != nil {
		r.mirrorCh = make(chan *audit.Entry, config.AsyncBuffer)
		r.done = make(chan struct{})
		r.wg.Add(1)
		go r.worker()
	}

	return r
}

// Append assigns the next sequence number, stamps identity and time, and
// appends the entry to the trail. It never blocks on storage.
func (r *Recorder) Append(entry *audit.Entry) *audit.Entry {
	r.mu.Lock()

	entry.ID = uuid.New().String()
	entry.SessionID = r.sessionID
	entry.Sequence = len(r.entries) + 1
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	r.entries = append(r.entries, *entry)
	r.mu.Unlock()

	if r.mirrorCh != nil {
		mirrored := *entry
		select {
		case r.mirrorCh <- &mirrored:
		default:
			r.logger.Error("audit mirror channel full, dropping durable copy",
				"sequence", entry.Sequence,
				"channel_capacity", r.config.AsyncBuffer,
			)
		}
	}

	return entry
}

// Len returns the number of entries in the trail.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Export returns a complete, order-preserving copy of the trail.
func (r *Recorder) Export() []audit.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]audit.Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Last returns a copy of the most recent entry, or false for an empty trail.
func (r *Recorder) Last() (audit.Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.entries) == 0 {
		return audit.Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Close drains the mirror channel and waits for pending writes.
func (r *Recorder) Close() error {
	if r.mirrorCh == nil {
		return nil
	}

	r.closeOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
	return nil
}

// worker drains the mirror channel and writes entries to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case entry := <-r.mirrorCh:
			r.writeEntry(entry)

		case <-r.done:
			for {
				select {
				case entry := <-r.mirrorCh:
					r.writeEntry(entry)
				default:
					return
				}
			}
		}
	}
}

// writeEntry persists a single entry to storage.
func (r *Recorder) writeEntry(entry *audit.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	if err := r.storage.Store(ctx, entry); err != nil {
		r.logger.Error("failed to store audit entry",
			"sequence", entry.Sequence,
			"kind", entry.Kind,
			"error", err,
		)
		return
	}

	r.logger.Debug("audit entry mirrored",
		"sequence", entry.Sequence,
		"kind", entry.Kind,
	)
}
