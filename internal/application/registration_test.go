package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
	"qrentry/internal/infrastructure/memory"
)

func TestRegister_DeduplicatesThenSkipsOnResubmit(t *testing.T) {
	ctx := context.Background()
	svc := newTestRegistration(memory.NewAttendeeRepository())

	first, err := svc.Register(ctx, []string{"Alice", "Alice", "Bob"}, "Gala")
	require.NoError(t, err)
	assert.Equal(t, 2, first.InsertedCount)
	assert.Equal(t, 0, first.SkippedCount)
	require.Len(t, first.Inserted, 2)
	assert.Equal(t, "Alice", first.Inserted[0].Name)
	assert.Equal(t, "Bob", first.Inserted[1].Name)
	assert.NotEqual(t, first.Inserted[0].UID, first.Inserted[1].UID)

	second, err := svc.Register(ctx, []string{"Alice", "Alice", "Bob"}, "Gala")
	require.NoError(t, err)
	assert.Equal(t, 0, second.InsertedCount)
	assert.Equal(t, 2, second.SkippedCount)
	assert.Empty(t, second.Inserted)
}

func TestRegister_SameNameDifferentEvent(t *testing.T) {
	ctx := context.Background()
	svc := newTestRegistration(memory.NewAttendeeRepository())

	_, err := svc.Register(ctx, []string{"Alice"}, "Gala")
	require.NoError(t, err)

	res, err := svc.Register(ctx, []string{"Alice"}, "Afterparty")
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)
}

func TestRegister_TrimsNamesAndEvent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendeeRepository()
	svc := newTestRegistration(repo)

	res, err := svc.Register(ctx, []string{"  Alice ", "Alice", "", "   "}, "  Gala  ")
	require.NoError(t, err)
	assert.Equal(t, 1, res.InsertedCount)

	list, err := repo.List(ctx, entities.AttendeeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Alice", list[0].Name)
	assert.Equal(t, "Gala", list[0].Event)
	assert.Equal(t, entities.StatusNotEntered, list[0].Status)
	assert.False(t, list[0].Issued)
}

func TestRegister_CaseSensitive(t *testing.T) {
	svc := newTestRegistration(memory.NewAttendeeRepository())

	res, err := svc.Register(context.Background(), []string{"alice", "Alice"}, "Gala")
	require.NoError(t, err)
	assert.Equal(t, 2, res.InsertedCount)
}

func TestRegister_EmptyEvent(t *testing.T) {
	svc := newTestRegistration(memory.NewAttendeeRepository())

	_, err := svc.Register(context.Background(), []string{"Alice"}, "   ")
	require.ErrorIs(t, err, domain.ErrEventRequired)
	assert.True(t, domain.IsValidation(err))
}

func TestRegister_NoValidNames(t *testing.T) {
	svc := newTestRegistration(memory.NewAttendeeRepository())

	res, err := svc.Register(context.Background(), []string{"", "  "}, "Gala")
	require.NoError(t, err)
	assert.Equal(t, 0, res.InsertedCount)
	assert.Equal(t, 2, res.SkippedCount)
	assert.NotNil(t, res.Inserted)
	assert.Empty(t, res.Inserted)
}

func TestRegister_UIDCollisionIsNoOp(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendeeRepository()
	svc := newTestRegistration(repo)
	svc.newUID = func() string { return "same" }

	_, err := svc.Register(ctx, []string{"Alice"}, "Gala")
	require.NoError(t, err)

	res, err := svc.Register(ctx, []string{"Bob"}, "Gala")
	require.NoError(t, err)
	assert.Equal(t, entities.RegistrationResult{Inserted: []entities.NewAttendee{}}, res)

	list, err := repo.List(ctx, entities.AttendeeFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegister_ConcurrentSubmissionsInsertOnce(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewAttendeeRepository()
	svc := newTestRegistration(repo)

	const submitters = 40
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
		skipped  int
	)
	start := make(chan struct{})
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.Register(ctx, []string{"Alice", "Bob", "Alice"}, "Gala")
			assert.NoError(t, err)
			mu.Lock()
			defer mu.Unlock()
			inserted += res.InsertedCount
			skipped += res.SkippedCount
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 2, inserted)
	assert.Equal(t, 2*(submitters-1), skipped)

	list, err := repo.List(ctx, entities.AttendeeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	uids := map[string]bool{}
	for _, a := range list {
		assert.False(t, uids[a.UID], "duplicate uid %s", a.UID)
		uids[a.UID] = true
	}
}

func TestNormalizeNames_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOf(rapid.SampledFrom([]string{"", " ", "Alice", " Alice", "Bob ", "bob", "Chloé"})).Draw(t, "names")

		out := normalizeNames(names)

		seen := map[string]bool{}
		for _, n := range out {
			if n == "" {
				t.Fatalf("empty name in %q", out)
			}
			if seen[n] {
				t.Fatalf("duplicate %q in %q", n, out)
			}
			seen[n] = true
		}
		if len(out) > len(names) {
			t.Fatalf("output longer than input: %d > %d", len(out), len(names))
		}
		again := normalizeNames(out)
		if fmt.Sprint(again) != fmt.Sprint(out) {
			t.Fatalf("not idempotent: %q then %q", out, again)
		}
	})
}

func TestRegister_IdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOf(rapid.StringMatching(`[A-C ]{0,4}`)).Draw(t, "names")
		svc := NewRegistrationService(memory.NewAttendeeRepository())
		svc.now = func() time.Time { return time.Unix(0, 0) }

		first, err := svc.Register(context.Background(), names, "Gala")
		if err != nil {
			t.Fatal(err)
		}
		second, err := svc.Register(context.Background(), names, "Gala")
		if err != nil {
			t.Fatal(err)
		}
		unique := len(normalizeNames(names))
		if unique == 0 {
			return
		}
		if first.InsertedCount != unique || first.SkippedCount != 0 {
			t.Fatalf("first call: %+v, want %d inserted", first, unique)
		}
		if second.InsertedCount != 0 || second.SkippedCount != unique {
			t.Fatalf("second call: %+v, want %d skipped", second, unique)
		}
	})
}
