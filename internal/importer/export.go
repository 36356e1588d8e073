package importer

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"mmt.ticketoffice.org/internal/ledger"
	"mmt.ticketoffice.org/internal/timetable"
)

// Export writes the directory and ledger in the record format read by
// Import. Services come first, then passengers by id, then each passenger's
// itineraries in commit order so that replaying them rebuilds the same
// fare categories.
func Export(w io.Writer, directory *timetable.Directory, passengers *ledger.Ledger) error {
	bw := bufio.NewWriter(w)

	for _, s := range directory.Services() {
		fields := []string{kindService, strconv.Itoa(s.ID), formatCost(s.Cost)}
		for _, st := range s.Stations() {
			fields = append(fields, st.Time.String(), st.Name)
		}
		if err := writeRecord(bw, fields); err != nil {
			return err
		}
	}

	all := passengers.Passengers()
	for _, p := range all {
		if err := writeRecord(bw, []string{kindPassenger, p.Name}); err != nil {
			return err
		}
	}

	for _, p := range all {
		for _, it := range p.Itineraries() {
			fields := []string{kindItinerary, strconv.Itoa(p.ID), it.Date.Format(time.DateOnly)}
			for _, seg := range it.Segments() {
				fields = append(fields, strconv.Itoa(seg.ServiceID())+"/"+seg.First().Name+"/"+seg.Last().Name)
			}
			if err := writeRecord(bw, fields); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, fields []string) error {
	_, err := w.WriteString(strings.Join(fields, "|") + "\n")
	return err
}

func formatCost(cost float64) string {
	return strconv.FormatFloat(cost, 'f', -1, 64)
}
