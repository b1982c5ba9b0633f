package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sakshee44566/CareerHub/internal/models"
)

var (
	// ErrNotFound means no post with the requested id is in the collection.
	ErrNotFound = errors.New("post not found")

	// ErrPersist means a mutation was not committed. Callers may retry.
	ErrPersist = errors.New("persist failed")
)

// Backend loads and saves the whole post collection as one document.
// SaveCollection must replace the stored document atomically: a concurrent
// reader sees either the old or the new collection, never a mix.
type Backend interface {
	LoadCollection(ctx context.Context) ([]models.Post, error)
	SaveCollection(ctx context.Context, posts []models.Post) error
}

// Store is the post collection. Every call reloads the collection from the
// backend and every mutation writes it back in full.
//
// There is no locking across calls: two mutations that interleave their
// load and save phases resolve as last write wins, and the earlier write is
// lost. That is acceptable for a single admin operator.
type Store struct {
	backend Backend
	now     func() time.Time
	newID   func() string
}

// Option configures a Store.
type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the collection newest first. A read failure is logged and
// treated as an empty collection.
func (s *Store) List(ctx context.Context) []models.Post {
	return s.read(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (*models.Post, error) {
	posts := s.read(ctx)
	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	return &posts[i], nil
}

// Insert assigns an id and today's date to fields and prepends the result.
func (s *Store) Insert(ctx context.Context, fields models.PostFields) (*models.Post, error) {
	posts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	post := models.Post{
		ID:          s.newID(),
		PostFields:  fields,
		PublishedAt: s.now().UTC().Format(models.PublishedAtLayout),
	}

	next := make([]models.Post, 0, len(posts)+1)
	next = append(next, post)
	next = append(next, posts...)

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	return &post, nil
}

// Update merges patch onto the post with the given id, keeping its position.
// An unreadable collection is treated as empty, so the result is ErrNotFound
// and nothing is written.
func (s *Store) Update(ctx context.Context, id string, patch models.PostPatch) (*models.Post, error) {
	posts := s.read(ctx)

	i := indexOf(posts, id)
	if i < 0 {
		return nil, ErrNotFound
	}
	patch.Apply(&posts[i])

	if err := s.save(ctx, posts); err != nil {
		return nil, err
	}
	updated := posts[i]
	return &updated, nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	posts := s.read(ctx)

	i := indexOf(posts, id)
	if i < 0 {
		return ErrNotFound
	}
	next := make([]models.Post, 0, len(posts)-1)
	next = append(next, posts[:i]...)
	next = append(next, posts[i+1:]...)

	return s.save(ctx, next)
}

func (s *Store) read(ctx context.Context) []models.Post {
	posts, err := s.backend.LoadCollection(ctx)
	if err != nil {
		slog.Error("load posts failed, serving empty collection", "err", err)
		return []models.Post{}
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts
}

// load is read for Insert: an unreadable collection must not be replaced by
// one holding only the new post.
func (s *Store) load(ctx context.Context) ([]models.Post, error) {
	posts, err := s.backend.LoadCollection(ctx)
	if err != nil {
		slog.Error("load posts for mutation failed", "err", err)
		return nil, fmt.Errorf("%w: load: %v", ErrPersist, err)
	}
	return posts, nil
}

// save runs detached from request cancellation so an abandoned request
// cannot cut a write short.
func (s *Store) save(ctx context.Context, posts []models.Post) error {
	if err := s.backend.SaveCollection(context.WithoutCancel(ctx), posts); err != nil {
		slog.Error("save posts failed", "err", err, "count", len(posts))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func indexOf(posts []models.Post, id string) int {
	for i := range posts {
		if posts[i].ID == id {
			return i
		}
	}
	return -1
}
