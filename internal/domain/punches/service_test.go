package punches

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto/internal/domain/timeclock"
)

var brt = time.FixedZone("BRT", -3*60*60)

type memoryStore struct {
	mu      sync.Mutex
	records []timeclock.Record
}

func (m *memoryStore) ListBetween(ctx context.Context, employeeID string, from, to time.Time) ([]timeclock.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timeclock.Record
	for _, rec := range m.records {
		if rec.EmployeeID == employeeID && !rec.At.Before(from) && rec.At.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) ListAllBetween(ctx context.Context, from, to time.Time) ([]timeclock.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []timeclock.Record
	for _, rec := range m.records {
		if !rec.At.Before(from) && rec.At.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) Insert(ctx context.Context, employeeID string, kind timeclock.Kind, at time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := strconv.Itoa(len(m.records) + 1)
	m.records = append(m.records, timeclock.Record{ID: id, EmployeeID: employeeID, Kind: kind.String(), At: &at})
	return id, nil
}

func (m *memoryStore) WithDayLock(ctx context.Context, employeeID, date string, fn func(DayTx) error) error {
	return fn(m)
}

func (m *memoryStore) seed(employeeID, kind string, at time.Time) {
	m.records = append(m.records, timeclock.Record{ID: "seed-" + strconv.Itoa(len(m.records)), EmployeeID: employeeID, Kind: kind, At: &at})
}

type countingRecorder struct {
	mu       sync.Mutex
	recorded int
	rejected map[string]int
}

func (c *countingRecorder) PunchRecorded(string) {
	c.mu.Lock()
	c.recorded++
	c.mu.Unlock()
}

func (c *countingRecorder) PunchRejected(reason string) {
	c.mu.Lock()
	if c.rejected == nil {
		c.rejected = map[string]int{}
	}
	c.rejected[reason]++
	c.mu.Unlock()
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(hour, minute int) {
	c.mu.Lock()
	c.now = time.Date(2024, 3, 4, hour, minute, 0, 0, brt)
	c.mu.Unlock()
}

func newTestService() (*Service, *memoryStore, *clock, *countingRecorder) {
	store := &memoryStore{}
	clk := &clock{}
	clk.Set(8, 0)
	rec := &countingRecorder{}
	return NewService(store, brt, clk.Now, rec), store, clk, rec
}

func TestRecordFollowsTransitions(t *testing.T) {
	svc, store, clk, metrics := newTestService()
	ctx := context.Background()

	punch, err := svc.Record(ctx, "emp-1", "entrada")
	require.NoError(t, err)
	assert.Equal(t, timeclock.KindEntry, punch.Kind)
	assert.Equal(t, "08:00", punch.Clock())

	clk.Set(12, 0)
	_, err = svc.Record(ctx, "emp-1", "pausa")
	require.NoError(t, err)

	clk.Set(13, 0)
	_, err = svc.Record(ctx, "emp-1", "entry")
	require.NoError(t, err)

	clk.Set(17, 0)
	_, err = svc.Record(ctx, "emp-1", "S")
	require.NoError(t, err)

	assert.Len(t, store.records, 4)
	assert.Equal(t, 4, metrics.recorded)
}

func TestRecordRejectsIllegalTransitionWithoutWriting(t *testing.T) {
	svc, store, clk, metrics := newTestService()
	ctx := context.Background()

	_, err := svc.Record(ctx, "emp-1", "entry")
	require.NoError(t, err)

	clk.Set(8, 5)
	_, err = svc.Record(ctx, "emp-1", "entry")
	require.ErrorIs(t, err, timeclock.ErrIllegalTransition)

	var terr *timeclock.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, timeclock.StateLastWasEntry, terr.State)
	assert.Equal(t, []timeclock.Kind{timeclock.KindBreak, timeclock.KindExit}, terr.Allowed)
	assert.Len(t, store.records, 1)
	assert.Equal(t, 1, metrics.rejected["illegal_transition"])
}

func TestRecordAfterExitIsRejected(t *testing.T) {
	svc, store, clk, _ := newTestService()
	store.seed("emp-1", "Entrada", time.Date(2024, 3, 4, 8, 0, 0, 0, brt))
	store.seed("emp-1", "Saída", time.Date(2024, 3, 4, 17, 0, 0, 0, brt))
	clk.Set(18, 0)

	for _, kind := range []string{"entry", "break", "exit"} {
		_, err := svc.Record(context.Background(), "emp-1", kind)
		assert.ErrorIs(t, err, timeclock.ErrIllegalTransition, kind)
	}
	assert.Len(t, store.records, 2)
}

func TestYesterdayDoesNotAffectToday(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.seed("emp-1", "entry", time.Date(2024, 3, 3, 8, 0, 0, 0, brt))

	_, err := svc.Record(context.Background(), "emp-1", "entry")
	assert.NoError(t, err)
}

func TestRecordValidatesInput(t *testing.T) {
	svc, store, _, metrics := newTestService()

	_, err := svc.Record(context.Background(), "", "entry")
	assert.ErrorIs(t, err, timeclock.ErrMissingEmployeeContext)

	_, err = svc.Record(context.Background(), "emp-1", "lunch")
	assert.ErrorIs(t, err, timeclock.ErrUnknownKind)
	assert.Empty(t, store.records)
	assert.Equal(t, 1, metrics.rejected["unknown_kind"])
}

func TestConcurrentSubmissionsRecordOnce(t *testing.T) {
	svc, store, _, _ := newTestService()

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Record(context.Background(), "emp-1", "entry")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, timeclock.ErrIllegalTransition)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, store.records, 1)
	assert.Zero(t, svc.locks.size())
}

func TestTodayReportsLiveWorked(t *testing.T) {
	svc, store, clk, _ := newTestService()
	store.seed("emp-1", "E", time.Date(2024, 3, 4, 8, 0, 0, 0, brt))
	store.seed("emp-1", "P", time.Date(2024, 3, 4, 12, 0, 0, 0, brt))
	store.seed("emp-1", "E", time.Date(2024, 3, 4, 13, 0, 0, 0, brt))
	store.seed("emp-1", "bogus", time.Date(2024, 3, 4, 13, 30, 0, 0, brt))
	clk.Set(15, 30)

	view, err := svc.Today(context.Background(), "emp-1")
	require.NoError(t, err)

	assert.Equal(t, "2024-03-04", view.Date)
	assert.Equal(t, timeclock.StateLastWasEntry, view.State)
	assert.Equal(t, []timeclock.Kind{timeclock.KindBreak, timeclock.KindExit}, view.Allowed)
	assert.Equal(t, 6*time.Hour+30*time.Minute, view.Worked)
	require.Len(t, view.Punches, 3)
	assert.Equal(t, "13:00", view.Punches[0].Clock())
	assert.Len(t, view.Skipped, 1)
}

func TestRangeAndDay(t *testing.T) {
	svc, store, _, _ := newTestService()
	store.seed("emp-1", "entry", time.Date(2024, 3, 1, 8, 0, 0, 0, brt))
	store.seed("emp-1", "exit", time.Date(2024, 3, 1, 17, 0, 0, 0, brt))
	store.seed("emp-2", "entry", time.Date(2024, 3, 1, 9, 0, 0, 0, brt))
	store.seed("emp-1", "entry", time.Date(2024, 3, 2, 8, 0, 0, 0, brt))

	punches, _, err := svc.Range(context.Background(), "emp-1", "2024-03-01", "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, punches, 2)

	day, _, err := svc.Day(context.Background(), "2024-03-01")
	require.NoError(t, err)
	assert.Len(t, day, 3)

	_, _, err = svc.Range(context.Background(), "emp-1", "2024-03-05", "2024-03-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, _, err = svc.Range(context.Background(), "emp-1", "01/03/2024", "2024-03-01")
	assert.ErrorIs(t, err, ErrInvalidDate)
}
