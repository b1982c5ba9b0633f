package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/sakshee44566/CareerHub/internal/models"
)

// memBackend is an in-memory Backend whose failures can be switched on.
type memBackend struct {
	posts   []models.Post
	loadErr error
	saveErr error
	saves   int
	lastCtx context.Context
}

func (m *memBackend) LoadCollection(ctx context.Context) ([]models.Post, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]models.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

func (m *memBackend) SaveCollection(ctx context.Context, posts []models.Post) error {
	m.lastCtx = ctx
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.posts = append([]models.Post(nil), posts...)
	return nil
}

func fixedClock() time.Time {
	return time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)
}

func setupTestStore(t *testing.T) (*Store, *FileBackend) {
	t.Helper()
	backend := NewFileBackend(filepath.Join(t.TempDir(), "data", "posts.json"))
	if err := backend.Init(); err != nil {
		t.Fatalf("initializing file backend: %v", err)
	}
	return NewStore(backend, WithClock(fixedClock)), backend
}

func ids(posts []models.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestList_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	posts := store.List(context.Background())
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected empty non-nil collection, got %#v", posts)
	}
}

func TestInsert_NewestFirst(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	a, err := store.Insert(ctx, models.PostFields{Title: "A"})
	if err != nil {
		t.Fatalf("Insert(A) error: %v", err)
	}
	b, err := store.Insert(ctx, models.PostFields{Title: "B"})
	if err != nil {
		t.Fatalf("Insert(B) error: %v", err)
	}

	posts := store.List(ctx)
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].Title != "B" || posts[1].Title != "A" {
		t.Errorf("expected [B, A], got [%s, %s]", posts[0].Title, posts[1].Title)
	}
	if posts[0].ID != b.ID || posts[1].ID != a.ID {
		t.Errorf("ids out of order: %v", ids(posts))
	}
}

func TestInsert_AssignsFreshIDAtIndexZero(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		before := ids(store.List(ctx))

		post, err := store.Insert(ctx, models.PostFields{Title: fmt.Sprintf("post %d", i)})
		if err != nil {
			t.Fatalf("Insert() error: %v", err)
		}
		if post.ID == "" {
			t.Fatal("expected non-empty id")
		}
		for _, id := range before {
			if id == post.ID {
				t.Fatalf("id %q already in collection", post.ID)
			}
		}

		after := store.List(ctx)
		if after[0].ID != post.ID {
			t.Errorf("expected new post at index 0, got %q", after[0].ID)
		}
		if len(after) != len(before)+1 {
			t.Errorf("expected %d posts, got %d", len(before)+1, len(after))
		}
	}
}

func TestInsert_PublishedAtIsUTCDate(t *testing.T) {
	store, _ := setupTestStore(t)

	post, err := store.Insert(context.Background(), models.PostFields{Title: "Dated"})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if post.PublishedAt != "2026-10-14" {
		t.Errorf("expected publishedAt 2026-10-14, got %q", post.PublishedAt)
	}
}

func TestInsertGet_RoundTrip(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	fields := models.PostFields{
		Title:               "Go Intern",
		Excerpt:             "Summer internship",
		Content:             "Work on the API",
		Category:            models.CategoryInternship,
		Company:             "Acme",
		Location:            "Remote",
		Salary:              "20k/month",
		Experience:          models.ExperienceFresher,
		Tags:                []string{"go", "internship"},
		IsRemote:            true,
		ApplicationDeadline: "2026-12-01",
	}

	created, err := store.Insert(ctx, fields)
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	want := models.Post{ID: created.ID, PostFields: fields, PublishedAt: "2026-10-14"}
	if !reflect.DeepEqual(*got, want) {
		t.Errorf("Get() = %+v, want %+v", *got, want)
	}
}

func TestGet_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestUpdate_ChangesOnlyPatchedField(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	first, _ := store.Insert(ctx, models.PostFields{Title: "First", Company: "A"})
	target, _ := store.Insert(ctx, models.PostFields{Title: "Target", Company: "B", Tags: []string{"x"}})
	store.Insert(ctx, models.PostFields{Title: "Last", Company: "C"})

	before := store.List(ctx)

	company := "B2"
	updated, err := store.Update(ctx, target.ID, models.PostPatch{Company: &company})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	want := *target
	want.Company = "B2"
	if !reflect.DeepEqual(*updated, want) {
		t.Errorf("Update() = %+v, want %+v", *updated, want)
	}

	after := store.List(ctx)
	if !reflect.DeepEqual(ids(after), ids(before)) {
		t.Errorf("positions changed: before %v, after %v", ids(before), ids(after))
	}
	if after[1].Company != "B2" {
		t.Errorf("expected stored company B2, got %q", after[1].Company)
	}
	if after[2].ID != first.ID || after[2].Company != "A" {
		t.Errorf("unrelated post changed: %+v", after[2])
	}
}

func TestUpdate_NotFound(t *testing.T) {
	backend := &memBackend{posts: []models.Post{{ID: "one"}}}
	store := NewStore(backend)

	title := "x"
	if _, err := store.Update(context.Background(), "missing", models.PostPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if backend.saves != 0 {
		t.Errorf("expected no write, got %d saves", backend.saves)
	}
}

func TestUpdate_CannotChangeIdentity(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	post, _ := store.Insert(ctx, models.PostFields{Title: "Fixed"})
	title := "Renamed"
	updated, err := store.Update(ctx, post.ID, models.PostPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.ID != post.ID || updated.PublishedAt != post.PublishedAt {
		t.Errorf("identity changed: %+v -> %+v", post, updated)
	}
}

func TestRemove(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	a, _ := store.Insert(ctx, models.PostFields{Title: "A"})
	b, _ := store.Insert(ctx, models.PostFields{Title: "B"})
	c, _ := store.Insert(ctx, models.PostFields{Title: "C"})

	if err := store.Remove(ctx, b.ID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}

	got := ids(store.List(ctx))
	want := []string{c.ID, a.ID}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("after Remove() ids = %v, want %v", got, want)
	}
}

func TestRemove_NotFoundLeavesCollection(t *testing.T) {
	backend := &memBackend{posts: []models.Post{{ID: "one"}, {ID: "two"}}}
	store := NewStore(backend)

	if err := store.Remove(context.Background(), "three"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
	if backend.saves != 0 || len(backend.posts) != 2 {
		t.Errorf("collection changed: saves=%d posts=%v", backend.saves, ids(backend.posts))
	}
}

func TestReadFailure_TreatedAsEmpty(t *testing.T) {
	store := NewStore(&memBackend{loadErr: errors.New("disk gone")})
	ctx := context.Background()

	posts := store.List(ctx)
	if posts == nil || len(posts) != 0 {
		t.Errorf("expected empty collection, got %#v", posts)
	}
	if _, err := store.Get(ctx, "any"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMutations_UnreadableSnapshot(t *testing.T) {
	backend := &memBackend{loadErr: errors.New("corrupt")}
	store := NewStore(backend)
	ctx := context.Background()

	if _, err := store.Insert(ctx, models.PostFields{Title: "A"}); !errors.Is(err, ErrPersist) {
		t.Errorf("Insert() error = %v, want ErrPersist", err)
	}
	title := "x"
	if _, err := store.Update(ctx, "id", models.PostPatch{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := store.Remove(ctx, "id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
	if backend.saves != 0 {
		t.Errorf("expected no writes, got %d", backend.saves)
	}
}

func TestMutations_PersistFailure(t *testing.T) {
	backend := &memBackend{posts: []models.Post{{ID: "one"}}}
	store := NewStore(backend)
	ctx := context.Background()
	backend.saveErr = errors.New("disk full")

	created, err := store.Insert(ctx, models.PostFields{Title: "A"})
	if !errors.Is(err, ErrPersist) {
		t.Errorf("Insert() error = %v, want ErrPersist", err)
	}
	if created != nil {
		t.Error("expected no post returned on persist failure")
	}

	title := "x"
	if _, err := store.Update(ctx, "one", models.PostPatch{Title: &title}); !errors.Is(err, ErrPersist) {
		t.Errorf("Update() error = %v, want ErrPersist", err)
	}
	if err := store.Remove(ctx, "one"); !errors.Is(err, ErrPersist) {
		t.Errorf("Remove() error = %v, want ErrPersist", err)
	}

	backend.saveErr = nil
	posts := store.List(ctx)
	if len(posts) != 1 || posts[0].ID != "one" || posts[0].Title != "" {
		t.Errorf("expected original collection intact, got %+v", posts)
	}
}

func TestSave_DetachedFromCancellation(t *testing.T) {
	backend := &memBackend{}
	store := NewStore(backend)

	ctx, cancel := context.WithCancel(context.Background())
	if _, err := store.Insert(ctx, models.PostFields{Title: "A"}); err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	cancel()

	if backend.lastCtx.Err() != nil {
		t.Error("expected save context to outlive request cancellation")
	}
}

func TestWithIDGenerator(t *testing.T) {
	n := 0
	store := NewStore(&memBackend{}, WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("post-%d", n)
	}))

	post, err := store.Insert(context.Background(), models.PostFields{Title: "A"})
	if err != nil {
		t.Fatalf("Insert() error: %v", err)
	}
	if post.ID != "post-1" {
		t.Errorf("expected id post-1, got %q", post.ID)
	}
}
