package ticketoffice

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmt.ticketoffice.org/internal/appconf"
	"mmt.ticketoffice.org/internal/fares"
	"mmt.ticketoffice.org/internal/importer"
	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/search"
	"mmt.ticketoffice.org/internal/timetable"
	"mmt.ticketoffice.org/mmtdb"
)

const records = `SERVICE|1|100|08:00|A|09:00|B|10:00|C
SERVICE|2|30|09:15|B|09:45|D
SERVICE|3|50|07:00|D|08:30|A
PASSENGER|Ana
PASSENGER|Rui
`

func newOffice(t *testing.T) (*Office, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	o := New(logging.NewStructuredLogger(&logs, slog.LevelDebug))
	_, err := o.Import(strings.NewReader(records))
	require.NoError(t, err)
	return o, &logs
}

type memStore struct {
	snap   *mmtdb.Snapshot
	saves  int
	failOn error
}

func (m *memStore) SaveSnapshot(_ context.Context, snap mmtdb.Snapshot) error {
	if m.failOn != nil {
		return m.failOn
	}
	m.saves++
	m.snap = &snap
	return nil
}

func (m *memStore) LoadSnapshot(context.Context) (mmtdb.Snapshot, error) {
	if m.snap == nil {
		return mmtdb.Snapshot{}, mmtdb.ErrNoSnapshot
	}
	return *m.snap, nil
}

func TestSearchDirectService(t *testing.T) {
	o, _ := newOffice(t)

	results, err := o.Search(0, "A", "C", "2017-11-20", "07:00")
	require.NoError(t, err)
	require.Len(t, results, 1)

	it := results[0]
	require.Equal(t, 1, it.Len())
	assert.Equal(t, "A", it.Departure().Name)
	assert.Equal(t, "C", it.Arrival().Name)
	assert.InDelta(t, 100.0, it.Cost(), 1e-9)
	assert.Equal(t, 2*time.Hour, it.Duration())
	assert.Equal(t, "2017-11-20", it.Date.Format(time.DateOnly))
}

func TestSearchInputErrors(t *testing.T) {
	o, _ := newOffice(t)

	_, err := o.Search(9, "A", "C", "2017-11-20", "07:00")
	assert.ErrorIs(t, err, ledger.ErrNoSuchPassenger)

	_, err = o.Search(0, "A", "C", "20/11/2017", "07:00")
	assert.ErrorIs(t, err, timetable.ErrInvalidDate)

	_, err = o.Search(0, "A", "C", "2017-11-20", "7 o'clock")
	assert.ErrorIs(t, err, timetable.ErrInvalidTime)

	_, err = o.Search(0, "A", "Z", "2017-11-20", "07:00")
	assert.ErrorIs(t, err, timetable.ErrNoSuchStation)
}

func TestSearchAndCommit(t *testing.T) {
	o, _ := newOffice(t)
	store := &memStore{}
	_, err := o.Save(context.Background(), store)
	require.NoError(t, err)
	require.False(t, o.Dirty())

	results, err := o.Search(1, "A", "D", "2017-11-20", "07:30")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []int{1, 2}, results[0].ServiceIDs())

	it, err := o.Commit(1, results, 0)
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.False(t, o.Dirty(), "cancel changes nothing")

	_, err = o.Commit(1, results, 2)
	assert.ErrorIs(t, err, ledger.ErrInvalidChoice)

	it, err = o.Commit(1, results, 1)
	require.NoError(t, err)
	assert.Same(t, results[0], it)
	assert.True(t, o.Dirty())

	rui, _ := o.Passenger(1)
	assert.InDelta(t, 50.0+30.0, rui.MoneySpent, 1e-9)
	assert.Equal(t, time.Hour+45*time.Minute, rui.TimeSpent)
}

func TestListings(t *testing.T) {
	o, _ := newOffice(t)
	_, err := o.Import(strings.NewReader("SERVICE|4|10|09:30|A|11:00|C\n"))
	require.NoError(t, err)

	departing, err := o.ServicesDepartingFrom("A")
	require.NoError(t, err)
	require.Len(t, departing, 2)
	assert.Equal(t, 4, departing[0].ID, "later departure first")
	assert.Equal(t, 1, departing[1].ID)

	arriving, err := o.ServicesArrivingAt("C")
	require.NoError(t, err)
	require.Len(t, arriving, 2)
	assert.Equal(t, 4, arriving[0].ID, "later arrival first")

	none, err := o.ServicesDepartingFrom("C")
	require.NoError(t, err, "C is a known station that no service starts from")
	assert.Empty(t, none)

	_, err = o.ServicesArrivingAt("Nowhere")
	assert.ErrorIs(t, err, timetable.ErrNoSuchStation)

	_, err = o.Service(42)
	assert.ErrorIs(t, err, timetable.ErrNoSuchService)
	assert.Len(t, o.Services(), 4)
}

func TestPassengerManagement(t *testing.T) {
	o, _ := newOffice(t)

	p, err := o.RegisterPassenger("Eva")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)

	_, err = o.RegisterPassenger("Ana")
	assert.ErrorIs(t, err, ledger.ErrDuplicateName)

	require.NoError(t, o.RenamePassenger(2, "Eva Maria"))
	assert.ErrorIs(t, o.RenamePassenger(2, "Rui"), ledger.ErrDuplicateName)
	assert.ErrorIs(t, o.RenamePassenger(7, "Zé"), ledger.ErrNoSuchPassenger)

	names := []string{}
	for _, p := range o.Passengers() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Ana", "Rui", "Eva Maria"}, names)
}

func TestItineraryListings(t *testing.T) {
	o, _ := newOffice(t)
	_, err := o.Import(strings.NewReader(
		"ITINERARY|1|2017-11-22|1/A/C\nITINERARY|1|2017-11-20|2/B/D\n"))
	require.NoError(t, err)

	byDate, err := o.PassengerItineraries(1)
	require.NoError(t, err)
	require.Len(t, byDate, 2)
	assert.Equal(t, []int{2}, byDate[0].ServiceIDs())

	_, err = o.PassengerItineraries(5)
	assert.ErrorIs(t, err, ledger.ErrNoSuchPassenger)

	all := o.AllItineraries()
	require.Len(t, all, 1, "passengers without itineraries are left out")
	assert.Equal(t, "Rui", all[0].Passenger.Name)
	assert.Len(t, all[0].Itineraries, 2)
}

func TestReset(t *testing.T) {
	o, logs := newOffice(t)
	o.Reset()

	assert.Empty(t, o.Passengers())
	assert.Len(t, o.Services(), 3)
	assert.True(t, o.Dirty())
	assert.Contains(t, logs.String(), `"msg":"passengers_reset"`)

	p, err := o.RegisterPassenger("Ana")
	require.NoError(t, err)
	assert.Equal(t, 0, p.ID)
}

func TestSaveOnlyWhenDirty(t *testing.T) {
	o, _ := newOffice(t)
	store := &memStore{}
	ctx := context.Background()

	saved, err := o.Save(ctx, store)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, o.Dirty())

	saved, err = o.Save(ctx, store)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, 1, store.saves)

	_, _ = o.RegisterPassenger("Eva")
	store.failOn = assert.AnError
	_, err = o.Save(ctx, store)
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, o.Dirty(), "a failed save keeps the changes pending")
}

func TestLoadWithoutSnapshot(t *testing.T) {
	o, _ := newOffice(t)
	err := o.Load(context.Background(), &memStore{})
	assert.ErrorIs(t, err, mmtdb.ErrNoSnapshot)
	assert.Len(t, o.Services(), 3)
}

func TestSnapshotRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := mmtdb.NewClient(mmtdb.Config{DBPath: ":memory:", Env: appconf.Test})
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	o, _ := newOffice(t)
	_, err = o.Import(strings.NewReader(
		"SERVICE|5|60|12:00|A|12:30|B|13:00|A|13:30|C\nITINERARY|0|2017-11-21|5/A/C\nITINERARY|0|2017-11-20|1/A/C\n"))
	require.NoError(t, err)

	saved, err := o.Save(ctx, client)
	require.NoError(t, err)
	require.True(t, saved)

	restored := New(nil)
	require.NoError(t, restored.Load(ctx, client))
	assert.False(t, restored.Dirty())

	var want, got bytes.Buffer
	require.NoError(t, o.Export(&want))
	require.NoError(t, restored.Export(&got))
	assert.Equal(t, want.String(), got.String())

	ana, _ := restored.Passenger(0)
	original, _ := o.Passenger(0)
	assert.Equal(t, original.String(), ana.String())
	assert.Equal(t, original.Category, ana.Category)
	assert.Equal(t, 2, ana.Itineraries()[0].Segments()[0].FirstIndex(), "positions survive the store")

	p, err := restored.RegisterPassenger("Eva")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ID)
}

func TestRestoreRejectsInconsistentSnapshots(t *testing.T) {
	o, _ := newOffice(t)

	testCases := []struct {
		name   string
		mutate func(*mmtdb.Snapshot)
	}{
		{"unknown tier", func(s *mmtdb.Snapshot) { s.Passengers[0].Category = "GOLD" }},
		{"backwards service", func(s *mmtdb.Snapshot) {
			s.Services[0].Stations[0].Time = 23 * time.Hour
		}},
		{"segment past the last stop", func(s *mmtdb.Snapshot) {
			s.Passengers[0].Itineraries = []mmtdb.ItineraryRecord{{
				Date:     time.Date(2017, 11, 20, 0, 0, 0, 0, time.UTC),
				Segments: []mmtdb.SegmentRecord{{ServiceID: 1, First: 1, Last: 7}},
			}}
		}},
		{"segment on unknown service", func(s *mmtdb.Snapshot) {
			s.Passengers[0].Itineraries = []mmtdb.ItineraryRecord{{
				Date:     time.Date(2017, 11, 20, 0, 0, 0, 0, time.UTC),
				Segments: []mmtdb.SegmentRecord{{ServiceID: 99, First: 0, Last: 1}},
			}}
		}},
		{"empty itinerary", func(s *mmtdb.Snapshot) {
			s.Passengers[0].Itineraries = []mmtdb.ItineraryRecord{{Date: time.Now()}}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			target := New(nil)
			snap := o.Snapshot()
			tc.mutate(&snap)

			require.Error(t, target.Restore(snap))
			assert.Empty(t, target.Services(), "state is untouched")
		})
	}
}

func TestRestoreKeepsStoredTotals(t *testing.T) {
	o := New(nil)
	err := o.Restore(mmtdb.Snapshot{
		Passengers: []mmtdb.PassengerRecord{{
			ID: 3, Name: "Ana", Category: "SPECIAL", RollingCost: 2600, MoneySpent: 4000, TimeSpent: 90 * time.Hour,
		}},
		NextPassengerID: 4,
	})
	require.NoError(t, err)

	p, err := o.Passenger(3)
	require.NoError(t, err)
	assert.Equal(t, fares.Special, p.Category.Tier)
	assert.Equal(t, "3|Ana|SPECIAL|0|4000.00|90:00", p.String())
}

func TestImportKeepsCommittedServicesLoadable(t *testing.T) {
	ctx := context.Background()
	o, _ := newOffice(t)

	results, err := o.Search(0, "A", "C", "2017-11-20", "07:00")
	require.NoError(t, err)
	_, err = o.Commit(0, results, 1)
	require.NoError(t, err)

	_, err = o.Import(strings.NewReader("SERVICE|1|100|08:00|A|09:00|B\n"))
	require.ErrorIs(t, err, timetable.ErrDuplicateService)
	require.ErrorIs(t, err, importer.ErrMalformedRecord)

	s, err := o.Service(1)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())

	store := &memStore{}
	_, err = o.Save(ctx, store)
	require.NoError(t, err)

	restored := New(nil)
	require.NoError(t, restored.Load(ctx, store))
	its, err := restored.PassengerItineraries(0)
	require.NoError(t, err)
	require.Len(t, its, 1)
	assert.Equal(t, "C", its[0].Arrival().Name)
}

func TestSearchRejectsSameStation(t *testing.T) {
	o, _ := newOffice(t)

	_, err := o.Search(0, "B", "B", "2017-11-20", "07:00")
	assert.ErrorIs(t, err, search.ErrSameStation)
}

func TestCommittedSearchesSurviveExportAndImport(t *testing.T) {
	o, _ := newOffice(t)

	for _, q := range [][2]string{{"A", "D"}, {"B", "C"}, {"A", "B"}} {
		results, err := o.Search(0, q[0], q[1], "2017-11-20", "06:00")
		require.NoError(t, err)
		require.NotEmpty(t, results, "%s to %s", q[0], q[1])
		_, err = o.Commit(0, results, 1)
		require.NoError(t, err)
	}

	var first bytes.Buffer
	require.NoError(t, o.Export(&first))

	again := New(nil)
	_, err := again.Import(bytes.NewReader(first.Bytes()))
	require.NoError(t, err)

	var second bytes.Buffer
	require.NoError(t, again.Export(&second))
	assert.Equal(t, first.String(), second.String())
}
