package reports

import (
	"net/url"
	"time"

	"github.com/atelier-sur-mesure/atelier-admin/internal/platform/api"
	"github.com/atelier-sur-mesure/atelier-admin/internal/shared"
)

// MaxPeriodDays bounds a report period.
const MaxPeriodDays = 366

// fillLimit is the longest period whose missing days are filled with zero rows.
const fillLimit = 92

// Period is an inclusive date range.
type Period struct {
	From api.Date
	To   api.Date
}

func day(t time.Time) api.Date {
	return api.Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// MonthToDate runs from the first of now's month to now.
func MonthToDate(now time.Time) Period {
	today := day(now)
	return Period{From: api.Date{Time: today.AddDate(0, 0, 1-today.Day())}, To: today}
}

// LastDays is the n days ending with now.
func LastDays(now time.Time, n int) Period {
	today := day(now)
	return Period{From: api.Date{Time: today.AddDate(0, 0, 1-n)}, To: today}
}

// ParsePeriod reads date_debut and date_fin. Missing bounds default to the
// month to date; invalid input reports field errors and keeps the default.
func ParsePeriod(values url.Values, now time.Time) (Period, shared.FieldErrors) {
	p := MonthToDate(now)
	fe := shared.FieldErrors{}
	if from, err := api.ParseDate(values.Get("date_debut")); err != nil {
		fe.Add("date_debut", "Date invalide.")
	} else if !from.IsZero() {
		p.From = from
	}
	if to, err := api.ParseDate(values.Get("date_fin")); err != nil {
		fe.Add("date_fin", "Date invalide.")
	} else if !to.IsZero() {
		p.To = to
	}
	switch {
	case fe.Any():
		return MonthToDate(now), fe
	case p.To.Before(p.From.Time):
		fe.Add("date_fin", "La date de fin précède la date de début.")
	case p.Days() > MaxPeriodDays:
		fe.Add("date_fin", "La période est limitée à un an.")
	}
	if fe.Any() {
		return MonthToDate(now), fe
	}
	return p, nil
}

// Days counts the days of the period.
func (p Period) Days() int {
	return int(p.To.Sub(p.From.Time).Hours()/24) + 1
}

// Query is the period as backend query parameters.
func (p Period) Query() url.Values {
	return url.Values{
		"date_debut": {p.From.FormValue()},
		"date_fin":   {p.To.FormValue()},
	}
}

// Slug names export files.
func (p Period) Slug() string {
	return p.From.FormValue() + "_" + p.To.FormValue()
}

// FillDays returns one row per day of a short period, zero where the backend
// sent none. Longer periods are returned as sent.
func FillDays(rows []SalesRow, p Period) []SalesRow {
	if p.Days() > fillLimit {
		return rows
	}
	byDay := make(map[string]SalesRow, len(rows))
	for _, r := range rows {
		byDay[r.Date.FormValue()] = r
	}
	out := make([]SalesRow, 0, p.Days())
	for d := p.From.Time; !d.After(p.To.Time); d = d.AddDate(0, 0, 1) {
		date := api.Date{Time: d}
		if r, ok := byDay[date.FormValue()]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, SalesRow{Date: date})
	}
	return out
}
