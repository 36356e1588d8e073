package importer

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mmt.ticketoffice.org/internal/timetable"
)

func buildFeed(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func sampleFeed(t *testing.T) []byte {
	return buildFeed(t, map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"CP,Comboios,https://example.com,Europe/Lisbon\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"R1,CP,IC,Intercidades,2\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,1,1,20170101,20271231\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"LIS,Lisboa,38.71,-9.12\n" +
			"COI,Coimbra,40.20,-8.43\n" +
			"POR,Porto,41.14,-8.58\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R1,WK,T2\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,LIS,1\n" +
			"T1,09:45:00,09:50:00,COI,2\n" +
			"T1,11:00:00,11:00:00,POR,3\n" +
			"T2,23:30:00,23:30:00,POR,1\n" +
			"T2,25:10:00,25:10:00,LIS,2\n",
	})
}

func TestImportGTFS(t *testing.T) {
	dir := timetable.NewDirectory()
	stats, err := ImportGTFS(sampleFeed(t), dir, GTFSOptions{FarePerHour: 20, FirstServiceID: 100})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Services)
	assert.Equal(t, 1, stats.Skipped, "the overnight trip does not fit one service day")

	s, err := dir.Service(100)
	require.NoError(t, err)
	assert.Equal(t, []timetable.Station{
		timetable.NewStation("Lisboa", timetable.Clock(8, 0)),
		timetable.NewStation("Coimbra", timetable.Clock(9, 45)),
		timetable.NewStation("Porto", timetable.Clock(11, 0)),
	}, s.Stations())
	assert.InDelta(t, 60.0, s.Cost, 1e-9, "three hours at 20 per hour")
}

func TestImportGTFSContinuesAfterExistingServices(t *testing.T) {
	dir := timetable.NewDirectory()
	require.NoError(t, dir.Add(timetable.MustService(5, 10,
		timetable.NewStation("A", timetable.Clock(8, 0)),
		timetable.NewStation("B", timetable.Clock(9, 0)))))

	_, err := ImportGTFS(sampleFeed(t), dir, GTFSOptions{FarePerHour: 10})
	require.NoError(t, err)

	assert.Equal(t, []int{5, 6}, dir.IDs())
	s, _ := dir.Service(6)
	assert.Equal(t, "Lisboa", s.Departure().Name)
}

func TestImportGTFSRejectsGarbage(t *testing.T) {
	dir := timetable.NewDirectory()
	_, err := ImportGTFS([]byte("not a zip archive"), dir, GTFSOptions{})
	require.Error(t, err)
	assert.Zero(t, dir.Len())
}

func TestFareFor(t *testing.T) {
	assert.InDelta(t, 12.5, fareFor(75*time.Minute, 10), 1e-9)
	assert.InDelta(t, 3.33, fareFor(20*time.Minute, 10), 1e-9)
	assert.Zero(t, fareFor(0, 10))
}

func TestImportGTFSRejectsTakenIDs(t *testing.T) {
	dir := timetable.NewDirectory()
	require.NoError(t, dir.Add(timetable.MustService(100, 10,
		timetable.NewStation("A", timetable.Clock(8, 0)),
		timetable.NewStation("B", timetable.Clock(9, 0)))))

	stats, err := ImportGTFS(sampleFeed(t), dir, GTFSOptions{FarePerHour: 20, FirstServiceID: 100})
	require.ErrorIs(t, err, timetable.ErrDuplicateService)
	assert.Zero(t, stats.Services)

	s, err := dir.Service(100)
	require.NoError(t, err)
	assert.Equal(t, "A", s.Departure().Name, "the existing service is kept")
	assert.Equal(t, 1, dir.Len())
}

func TestImportGTFSSkipsReservedStopNames(t *testing.T) {
	feed := buildFeed(t, map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"CP,Comboios,https://example.com,Europe/Lisbon\n",
		"routes.txt": "route_id,agency_id,route_short_name,route_long_name,route_type\n" +
			"R1,CP,IC,Intercidades,2\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WK,1,1,1,1,1,1,1,20170101,20271231\n",
		"stops.txt": "stop_id,stop_name,stop_lat,stop_lon\n" +
			"LIS,Lisboa,38.71,-9.12\n" +
			"CAM,Porto/Campanha,41.15,-8.59\n" +
			"POR,Porto,41.14,-8.58\n",
		"trips.txt": "route_id,service_id,trip_id\n" +
			"R1,WK,T1\n" +
			"R1,WK,T2\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,LIS,1\n" +
			"T1,11:00:00,11:00:00,CAM,2\n" +
			"T2,08:00:00,08:00:00,LIS,1\n" +
			"T2,11:00:00,11:00:00,POR,2\n",
	})

	dir := timetable.NewDirectory()
	stats, err := ImportGTFS(feed, dir, GTFSOptions{FarePerHour: 10, FirstServiceID: 1})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Services)
	assert.Equal(t, 1, stats.Skipped)
	s, err := dir.Service(1)
	require.NoError(t, err)
	assert.Equal(t, "Porto", s.Arrival().Name)
}
