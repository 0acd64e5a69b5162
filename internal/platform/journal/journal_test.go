package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ponto/internal/domain/timeclock"
)

func openMemory(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestRecordsAreChronologicalPerEmployee(t *testing.T) {
	j := openMemory(t)
	brt := time.FixedZone("BRT", -3*60*60)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, brt)

	_, err := j.Append(timeclock.Punch{EmployeeID: "ana", Kind: timeclock.KindBreak, At: day.Add(12 * time.Hour)})
	require.NoError(t, err)
	first, err := j.Append(timeclock.Punch{EmployeeID: "ana", Kind: timeclock.KindEntry, At: day.Add(8 * time.Hour)})
	require.NoError(t, err)
	_, err = j.Append(timeclock.Punch{EmployeeID: "anabela", Kind: timeclock.KindEntry, At: day.Add(9 * time.Hour)})
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)

	records, err := j.Records("ana")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "entry", records[0].Kind)
	assert.Equal(t, "break", records[1].Kind)

	punches, skipped := timeclock.Ingest(records, brt, day)
	assert.Empty(t, skipped)
	assert.Equal(t, "08:00", punches[0].Clock())
}

func TestRejectsPatternCharacters(t *testing.T) {
	j := openMemory(t)
	_, err := j.Append(timeclock.Punch{EmployeeID: "a*", Kind: timeclock.KindEntry, At: time.Now()})
	assert.ErrorIs(t, err, ErrInvalidEmployee)
	_, err = j.Records("")
	assert.ErrorIs(t, err, ErrInvalidEmployee)
}
