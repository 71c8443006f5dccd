// Package notestore holds the authoritative note collection for a session and
// writes it through to a storage.Provider after every mutation.
package notestore

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/starford/memo/internal/apperr"
	"github.com/starford/memo/internal/checksum"
	"github.com/starford/memo/internal/models"
	"github.com/starford/memo/internal/storage"
)

// DefaultKey is the storage key the collection is persisted under.
const DefaultKey = "memos"

// Change kinds passed to an Observer.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
	// KindReloaded reports that the whole collection was replaced from
	// storage; the note passed with it is empty.
	KindReloaded = "reloaded"
)

// ErrClosed is returned by operations on a closed Store.
var ErrClosed = errors.New("notestore: closed")

// Observer is notified after a mutation has been persisted. It runs on the
// store's loop and must not call back into the Store.
type Observer func(kind string, note models.Note, total int)

// Option configures a Store.
type Option func(*Store)

// WithKey sets the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithObserver registers a change observer.
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

type change struct {
	kind string
	note models.Note
}

// mutation computes the next collection from cur without modifying cur.
// A nil change means nothing happened and nothing is saved.
type mutation func(cur []models.Note) ([]models.Note, *change, error)

type request struct {
	fn     mutation
	force  bool
	reload bool
	done   chan error
}

// Store is the in-memory note collection.
//
// Concurrency model: one goroutine owns the collection and applies requests
// in arrival order, so overlapping callers can never lose an update. Each
// mutation is persisted before it is committed; a failed save leaves the
// in-memory state untouched.
type Store struct {
	provider storage.Provider
	key      string
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	observer Observer

	reqCh   chan request
	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool

	// sum is the checksum of the bytes last read or written. Owned by run.
	sum string
}

// Open loads the collection from provider and starts the store loop.
// A missing or malformed value yields an empty collection.
func Open(provider storage.Provider, opts ...Option) (*Store, error) {
	s := &Store{
		provider: provider,
		key:      DefaultKey,
		now:      time.Now,
		logger:   slog.Default(),
		reqCh:    make(chan request),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.newID == nil {
		s.newID = ulidGenerator(s.now, rand.Reader)
	}

	notes, err := s.load()
	if err != nil {
		return nil, err
	}

	go s.run(notes)
	return s, nil
}

func ulidGenerator(now func() time.Time, r io.Reader) func() string {
	entropy := ulid.Monotonic(r, 0)
	return func() string {
		return ulid.MustNew(ulid.Timestamp(now()), entropy).String()
	}
}

func (s *Store) load() ([]models.Note, error) {
	data, err := s.provider.Get(s.key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return []models.Note{}, nil
		}
		return nil, fmt.Errorf("notestore: load: %w", err)
	}
	s.sum = checksum.Sum(data)
	notes, err := Decode(data)
	if err != nil {
		s.logger.Warn("notestore: ignoring malformed data",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return []models.Note{}, nil
	}
	s.logger.Debug("notestore: loaded", slog.String("key", s.key), slog.Int("count", len(notes)))
	return notes, nil
}

func (s *Store) run(notes []models.Note) {
	defer close(s.stopped)

	for {
		select {
		case <-s.stopCh:
			return

		case req := <-s.reqCh:
			if req.reload {
				req.done <- s.reload(&notes)
				continue
			}
			next, ch, err := req.fn(notes)
			if err != nil {
				req.done <- err
				continue
			}
			if ch == nil {
				if !req.force {
					req.done <- nil
					continue
				}
				next = notes
			}
			if err := s.persist(next); err != nil {
				req.done <- err
				continue
			}
			notes = next
			if ch != nil && s.observer != nil {
				s.observer(ch.kind, ch.note, len(notes))
			}
			req.done <- nil
		}
	}
}

func (s *Store) persist(notes []models.Note) error {
	data, err := Encode(notes)
	if err != nil {
		return err
	}
	if err := s.provider.Set(s.key, data); err != nil {
		s.logger.Error("notestore: save failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return fmt.Errorf("notestore: save: %w", err)
	}
	s.sum = checksum.Sum(data)
	return nil
}

// reload replaces *notes with the stored collection when storage holds
// something other than what this store last read or wrote. Missing or
// malformed data leaves *notes alone.
func (s *Store) reload(notes *[]models.Note) error {
	data, err := s.provider.Get(s.key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("notestore: reload: %w", err)
	}
	sum := checksum.Sum(data)
	if sum == s.sum {
		return nil
	}
	next, err := Decode(data)
	if err != nil {
		s.logger.Warn("notestore: ignoring malformed data on reload",
			slog.String("key", s.key),
			slog.String("error", err.Error()))
		return nil
	}
	*notes = next
	s.sum = sum
	s.logger.Info("notestore: reloaded", slog.String("key", s.key), slog.Int("count", len(next)))
	if s.observer != nil {
		s.observer(KindReloaded, models.Note{}, len(next))
	}
	return nil
}

func (s *Store) exec(ctx context.Context, fn mutation, force bool) error {
	return s.send(ctx, request{fn: fn, force: force, done: make(chan error, 1)})
}

func (s *Store) send(ctx context.Context, req request) error {
	if s.closed.Load() {
		return ErrClosed
	}
	select {
	case s.reqCh <- req:
	case <-s.stopped:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// The loop always answers a request it has accepted.
	return <-req.done
}

// Close stops the store loop. Pending callers receive ErrClosed.
func (s *Store) Close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.stopCh)
	}
	<-s.stopped
}

// Reload picks up changes another process made to storage. It is a no-op
// when storage still holds what this store last read or wrote.
func (s *Store) Reload(ctx context.Context) error {
	return s.send(ctx, request{reload: true, done: make(chan error, 1)})
}

// Add creates a note from title and content and puts it first in storage
// order. When both are blank after trimming nothing happens and added is false.
// Invalid UTF-8 is replaced with U+FFFD so the stored JSON matches memory.
func (s *Store) Add(ctx context.Context, title, content string) (note models.Note, added bool, err error) {
	title = strings.ToValidUTF8(strings.TrimSpace(title), "\uFFFD")
	content = strings.ToValidUTF8(strings.TrimSpace(content), "\uFFFD")
	if title == "" && content == "" {
		return models.Note{}, false, nil
	}
	if title == "" {
		title = models.DefaultTitle
	}

	err = s.exec(ctx, func(cur []models.Note) ([]models.Note, *change, error) {
		id, err := s.uniqueID(cur)
		if err != nil {
			return nil, nil, err
		}
		now := s.now()
		note = models.Note{
			ID:        id,
			Title:     title,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		next := make([]models.Note, 0, len(cur)+1)
		next = append(next, note)
		next = append(next, cur...)
		return next, &change{kind: KindCreated, note: note}, nil
	}, false)
	if err != nil {
		return models.Note{}, false, err
	}
	return note, true, nil
}

func (s *Store) uniqueID(cur []models.Note) (string, error) {
	for range 8 {
		id := s.newID()
		if storage.ValidateKey(id) == nil && indexOf(cur, id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("notestore: could not generate a unique id")
}

// Remove deletes the note with id. An absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) (removed bool, err error) {
	err = s.exec(ctx, func(cur []models.Note) ([]models.Note, *change, error) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, nil, nil
		}
		removed = true
		gone := cur[i]
		next := slices.Concat(cur[:i], cur[i+1:])
		return next, &change{kind: KindDeleted, note: gone}, nil
	}, false)
	if err != nil {
		return false, err
	}
	return removed, nil
}

// ToggleFavorite flips the favorite flag of id and refreshes UpdatedAt.
// An absent id is a no-op and found is false.
func (s *Store) ToggleFavorite(ctx context.Context, id string) (note models.Note, found bool, err error) {
	err = s.exec(ctx, func(cur []models.Note) ([]models.Note, *change, error) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, nil, nil
		}
		found = true
		next := slices.Clone(cur)
		next[i].Favorite = !next[i].Favorite
		next[i].Touch(s.now())
		note = next[i]
		return next, &change{kind: KindUpdated, note: note}, nil
	}, false)
	if err != nil {
		return models.Note{}, false, err
	}
	return note, found, nil
}

// Save persists the full collection. Mutations already save; Save is for
// callers that want to rewrite storage explicitly.
func (s *Store) Save(ctx context.Context) error {
	return s.exec(ctx, func([]models.Note) ([]models.Note, *change, error) {
		return nil, nil, nil
	}, true)
}

// Notes returns a copy of the collection in storage order.
func (s *Store) Notes(ctx context.Context) ([]models.Note, error) {
	var out []models.Note
	err := s.exec(ctx, func(cur []models.Note) ([]models.Note, *change, error) {
		out = slices.Clone(cur)
		return nil, nil, nil
	}, false)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Note{}
	}
	return out, nil
}

// Get returns the note with id.
func (s *Store) Get(ctx context.Context, id string) (models.Note, error) {
	var (
		note  models.Note
		found bool
	)
	err := s.exec(ctx, func(cur []models.Note) ([]models.Note, *change, error) {
		if i := indexOf(cur, id); i >= 0 {
			note, found = cur[i], true
		}
		return nil, nil, nil
	}, false)
	if err != nil {
		return models.Note{}, err
	}
	if !found {
		return models.Note{}, apperr.ErrNotFound
	}
	return note, nil
}

// View returns the derived view of the current collection for f.
func (s *Store) View(ctx context.Context, f Filter) ([]models.Note, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	notes, err := s.Notes(ctx)
	if err != nil {
		return nil, err
	}
	return View(notes, f), nil
}

func indexOf(notes []models.Note, id string) int {
	return slices.IndexFunc(notes, func(n models.Note) bool { return n.ID == id })
}
