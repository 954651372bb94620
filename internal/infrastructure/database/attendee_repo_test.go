package database

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrentry/internal/domain"
	"qrentry/internal/domain/entities"
)

// setupTestDB connects to TEST_DATABASE_URL, migrates it and empties the
// attendees table. The test is skipped when no database is reachable.
func setupTestDB(t testing.TB) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	if err != nil {
		t.Skipf("database not available: %v", err)
	}
	t.Cleanup(pool.Close)

	require.NoError(t, RunMigrations(dsn, "up"))
	_, err = pool.Exec(ctx, `TRUNCATE attendees RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func insert(t *testing.T, repo *AttendeeRepository, event string, at time.Time, names ...string) []entities.NewAttendee {
	t.Helper()
	batch := make([]entities.NewAttendee, len(names))
	for i, n := range names {
		batch[i] = entities.NewAttendee{UID: fmt.Sprintf("%s-%s-%d", event, n, at.UnixNano()), Name: n}
	}
	got, err := repo.InsertMissing(context.Background(), event, batch, at)
	require.NoError(t, err)
	return got
}

func TestPostgres_InsertMissing(t *testing.T) {
	repo := NewAttendeeRepository(setupTestDB(t))
	now := time.Now().UTC().Truncate(time.Microsecond)

	got := insert(t, repo, "Gala", now, "Alice", "Bob")
	assert.Len(t, got, 2)

	got = insert(t, repo, "Gala", now.Add(time.Second), "Alice", "Chloé")
	require.Len(t, got, 1)
	assert.Equal(t, "Chloé", got[0].Name)

	list, err := repo.List(context.Background(), entities.AttendeeFilter{Event: "Gala"})
	require.NoError(t, err)
	require.Len(t, list, 3)
	for _, a := range list {
		assert.Equal(t, entities.StatusNotEntered, a.Status)
		assert.False(t, a.Issued)
		assert.Empty(t, a.Venue)
		assert.True(t, a.EnteredAt.IsZero())
	}
}

func TestPostgres_InsertMissing_UIDCollision(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))
	now := time.Now().UTC()

	_, err := repo.InsertMissing(ctx, "Gala", []entities.NewAttendee{{UID: "dup", Name: "Alice"}}, now)
	require.NoError(t, err)

	_, err = repo.InsertMissing(ctx, "Gala", []entities.NewAttendee{{UID: "dup", Name: "Bob"}}, now)
	assert.ErrorIs(t, err, domain.ErrDuplicateAttendee)
}

func TestPostgres_IssuanceOrderAndMarking(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))
	base := time.Now().UTC()

	insert(t, repo, "Gala", base, "Alice", "Bob")
	insert(t, repo, "Gala", base.Add(time.Second), "Chloé")

	pending, err := repo.ListUnissued(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "Alice", pending[0].Name)
	assert.Equal(t, "Bob", pending[1].Name)
	assert.Equal(t, "Chloé", pending[2].Name)

	n, err := repo.MarkIssued(ctx, []string{pending[0].UID, pending[1].UID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = repo.MarkIssued(ctx, []string{pending[0].UID})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	pending, err = repo.ListUnissued(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "Chloé", pending[0].Name)
}

func TestPostgres_AdmitOutcomes(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))
	uid := insert(t, repo, "Gala", time.Now().UTC(), "Alice")[0].UID
	at := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

	out, err := repo.Admit(ctx, uid, "North Gate", at)
	require.NoError(t, err)
	assert.Equal(t, entities.EntryAdmitted, out.Kind)
	assert.Equal(t, "Alice", out.AttendeeName)

	out, err = repo.Admit(ctx, uid, "South Gate", at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, entities.EntryAlreadyUsed, out.Kind)
	assert.Equal(t, entities.StatusEntered, out.Status)

	out, err = repo.Admit(ctx, "nonexistent", "North Gate", at)
	require.NoError(t, err)
	assert.Equal(t, entities.EntryUnknown, out.Kind)

	list, err := repo.List(ctx, entities.AttendeeFilter{Status: entities.StatusEntered})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "North Gate", list[0].Venue)
	assert.True(t, at.Equal(list[0].EnteredAt))
}

func TestPostgres_ConcurrentAdmitExactlyOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))
	uid := insert(t, repo, "Gala", time.Now().UTC(), "Alice")[0].UID

	const scanners = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = map[entities.EntryKind]int{}
	)
	start := make(chan struct{})
	for i := 0; i < scanners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			out, err := repo.Admit(ctx, uid, fmt.Sprintf("Gate %d", i), time.Now().UTC())
			assert.NoError(t, err)
			mu.Lock()
			results[out.Kind]++
			mu.Unlock()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, results[entities.EntryAdmitted])
	assert.Equal(t, scanners-1, results[entities.EntryAlreadyUsed])
}

func TestPostgres_ConcurrentInsertMissingOnce(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))

	const submitters = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	start := make(chan struct{})
	for i := 0; i < submitters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			batch := []entities.NewAttendee{
				{UID: fmt.Sprintf("alice-%d", i), Name: "Alice"},
				{UID: fmt.Sprintf("bob-%d", i), Name: "Bob"},
			}
			got, err := repo.InsertMissing(ctx, "Gala", batch, time.Now().UTC())
			assert.NoError(t, err)
			mu.Lock()
			inserted += len(got)
			mu.Unlock()
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 2, inserted)

	list, err := repo.List(ctx, entities.AttendeeFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.NotEqual(t, list[0].UID, list[1].UID)
}

func TestPostgres_ListFiltersAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendeeRepository(setupTestDB(t))
	base := time.Now().UTC()

	insert(t, repo, "Gala", base, "Alice")
	insert(t, repo, "Gala", base.Add(time.Second), "Bob")
	dan := insert(t, repo, "Afterparty", base.Add(2*time.Second), "Dan")
	_, err := repo.Admit(ctx, dan[0].UID, "Main Gate", base)
	require.NoError(t, err)

	list, err := repo.List(ctx, entities.AttendeeFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Dan", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)

	list, err = repo.List(ctx, entities.AttendeeFilter{Status: entities.StatusNotEntered, Event: "Gala"})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = repo.List(ctx, entities.AttendeeFilter{Status: entities.StatusEntered, Event: "Gala"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRunMigrations_RejectsDirection(t *testing.T) {
	err := RunMigrations("postgres://localhost/none", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}
