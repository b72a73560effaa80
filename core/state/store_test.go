package state

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusmove/movplan/core"
)

type item struct {
	ID   string
	Name string
}

type fakeSource struct {
	items []item
	seq   int
	err   error
}

func (s *fakeSource) List(context.Context) ([]item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return append([]item(nil), s.items...), nil
}

func (s *fakeSource) Create(_ context.Context, name string) (item, error) {
	if s.err != nil {
		return item{}, s.err
	}
	s.seq++
	it := item{ID: strconv.Itoa(s.seq), Name: name}
	s.items = append(s.items, it)
	return it, nil
}

func (s *fakeSource) Update(_ context.Context, id string, name string) (item, error) {
	if s.err != nil {
		return item{}, s.err
	}
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Name = name
			return s.items[i], nil
		}
	}
	return item{}, errors.New("not found")
}

func (s *fakeSource) Delete(_ context.Context, id string) error {
	return s.err
}

// gatedSource blocks its first List until release is closed.
type gatedSource struct {
	*fakeSource
	once    sync.Once
	listed  chan struct{}
	release chan struct{}
}

func (s *gatedSource) List(ctx context.Context) ([]item, error) {
	items, err := s.fakeSource.List(ctx)
	s.once.Do(func() {
		close(s.listed)
		<-s.release
	})
	return items, err
}

type nopLogger struct {
	mu       sync.Mutex
	errors   []string
	warnings []string
}

func (l *nopLogger) Debug(string, ...interface{}) {}
func (l *nopLogger) Info(string, ...interface{})  {}
func (l *nopLogger) Fatal(string, ...interface{}) {}
func (l *nopLogger) Warn(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.warnings = append(l.warnings, msg)
	l.mu.Unlock()
}
func (l *nopLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	l.errors = append(l.errors, msg)
	l.mu.Unlock()
}

func newStore(src Source[item, string], prepend bool) (*Store[item, string], *nopLogger) {
	return newStoreWithOptions(src, Options{Name: "class", Plural: "classes", Prepend: prepend})
}

func newStoreWithOptions(src Source[item, string], opts Options) (*Store[item, string], *nopLogger) {
	logger := new(nopLogger)
	s := New[item, string](src, func(it item) string { return it.ID }, opts, logger)
	return s, logger
}

func TestStore_Refresh(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{items: []item{{ID: "a", Name: "CS101"}}}
	s, logger := newStore(src, false)

	assert.True(t, s.Loading(), "loading until the first refresh")
	require.NoError(t, s.Refresh(ctx))
	assert.False(t, s.Loading())
	assert.Equal(t, []item{{ID: "a", Name: "CS101"}}, s.Items())

	src.err = errors.New("offline")
	assert.Error(t, s.Refresh(ctx))
	assert.False(t, s.Loading())
	assert.Equal(t, "Failed to load classes", s.LastError())
	assert.Len(t, s.Items(), 1, "cache kept on failure")
	assert.Len(t, logger.errors, 1)

	src.err = nil
	require.NoError(t, s.Refresh(ctx))
	assert.Empty(t, s.LastError())
}

func TestStore_Mutations(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{}
	s, _ := newStore(src, false)
	require.NoError(t, s.Refresh(ctx))

	var events []Event
	unsubscribe := s.Subscribe(func(e Event) { events = append(events, e) })

	a, err := s.Add(ctx, "CS101")
	require.NoError(t, err)
	b, err := s.Add(ctx, "CS102")
	require.NoError(t, err)
	assert.Equal(t, []item{a, b}, s.Items(), "appended")

	edited, err := s.Edit(ctx, a.ID, "CS101A")
	require.NoError(t, err)
	assert.Equal(t, "CS101A", edited.Name)
	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, "CS101A", got.Name)

	require.NoError(t, s.Remove(ctx, a.ID))
	assert.Equal(t, []item{b}, s.Items())

	assert.Equal(t, []Event{
		{Kind: Added, Collection: "classes", ID: a.ID},
		{Kind: Added, Collection: "classes", ID: b.ID},
		{Kind: Updated, Collection: "classes", ID: a.ID},
		{Kind: Removed, Collection: "classes", ID: a.ID},
	}, events)

	unsubscribe()
	_, err = s.Add(ctx, "CS103")
	require.NoError(t, err)
	assert.Len(t, events, 4, "no events after unsubscribe")
}

func TestStore_Prepend(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(&fakeSource{}, true)

	a, err := s.Add(ctx, "first")
	require.NoError(t, err)
	b, err := s.Add(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, []item{b, a}, s.Items())
}

func TestStore_FailuresLeaveStateUnchanged(t *testing.T) {
	ctx := context.Background()
	src := &fakeSource{}
	s, logger := newStore(src, false)
	a, err := s.Add(ctx, "CS101")
	require.NoError(t, err)

	var events []Event
	s.Subscribe(func(e Event) { events = append(events, e) })

	src.err = errors.New("backend down")
	tests := []struct {
		name    string
		op      func() error
		wantErr string
	}{
		{"add", func() error { _, err := s.Add(ctx, "CS102"); return err }, "Failed to add class"},
		{"update", func() error { _, err := s.Edit(ctx, a.ID, "X"); return err }, "Failed to update class"},
		{"delete", func() error { return s.Remove(ctx, a.ID) }, "Failed to delete class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.Equal(t, src.err, err)
			assert.Equal(t, tt.wantErr, s.LastError())
			assert.Equal(t, []item{a}, s.Items())
		})
	}
	assert.Empty(t, events)
	assert.Len(t, logger.errors, 3)

	src.err = nil
	_, err = s.Add(ctx, "CS102")
	require.NoError(t, err)
	assert.Empty(t, s.LastError(), "cleared by the next success")
}

func TestStore_ItemsIsACopy(t *testing.T) {
	s, _ := newStore(&fakeSource{}, false)
	_, err := s.Add(context.Background(), "CS101")
	require.NoError(t, err)

	items := s.Items()
	items[0].Name = "changed"
	assert.Equal(t, "CS101", s.Items()[0].Name)
}

func TestStore_RefreshKeepsConcurrentAdd(t *testing.T) {
	ctx := context.Background()
	src := &gatedSource{fakeSource: &fakeSource{}, listed: make(chan struct{}), release: make(chan struct{})}
	s, _ := newStore(src, false)

	done := make(chan error, 1)
	go func() { done <- s.Refresh(ctx) }()

	<-src.listed
	a, err := s.Add(ctx, "CS101")
	require.NoError(t, err)
	close(src.release)

	require.NoError(t, <-done)
	assert.Equal(t, []item{a}, s.Items())
	assert.False(t, s.Loading())
}

func TestStore_InvalidInputIsNotAFailure(t *testing.T) {
	ctx := context.Background()
	errExists := errors.New("Lecturer is already checked in")

	tests := []struct {
		name          string
		err           error
		wantLastError string
		wantWarnings  int
	}{
		{
			name: "field validation",
			err:  errors.Wrap(validator.ValidationErrors{}, "validating"),
		},
		{
			name: "validation error",
			err:  core.NewValidationError(nil, core.FieldError{Field: "name", Error: "this field cannot be blank"}),
		},
		{
			name:          "conflict",
			err:           errors.Wrap(core.NewValidationError(errExists, core.FieldError{Field: "name", Error: errExists.Error()}), "creating"),
			wantLastError: "Failed to add lecturer",
			wantWarnings:  1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{err: tt.err}
			s, logger := newStoreWithOptions(src, Options{Name: "lecturer", Conflicts: []error{errExists}})

			_, err := s.Add(ctx, "  ")
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.wantLastError, s.LastError())
			assert.Empty(t, logger.errors)
			assert.Len(t, logger.warnings, tt.wantWarnings)
		})
	}
}
