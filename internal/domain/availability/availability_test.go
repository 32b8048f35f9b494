package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentdom/internal/domain/listings"
	"rentdom/internal/domain/shared/daterange"
)

func TestParseSingleRow(t *testing.T) {
	res, err := Parse("id,month,startDay,endDay\nСогласия 50,июля,10,15")
	require.NoError(t, err)
	require.Empty(t, res.Skipped)
	require.Equal(t, []RentPeriod{{ID: "Согласия 50", Month: "июля", StartDay: 10, EndDay: 15}}, res.Periods)
}

func TestParseSkipsBadRowsAndKeepsOrder(t *testing.T) {
	csv := "id,month,startDay,endDay\r\n" +
		"Согласия 50,Июля,1,3\r\n" +
		"Согласия 50,июля,,5\r\n" +
		"Ленинский 36 1 комната,августа,x,9\r\n" +
		"Ленинский 36 1 комната,августа,9,2\r\n" +
		"Ленинский 36 2 комнаты,августа,20,22\r\n"

	res, err := Parse(csv)
	require.NoError(t, err)
	require.Equal(t, []RentPeriod{
		{ID: "Согласия 50", Month: "июля", StartDay: 1, EndDay: 3},
		{ID: "Ленинский 36 2 комнаты", Month: "августа", StartDay: 20, EndDay: 22},
	}, res.Periods)

	require.Len(t, res.Skipped, 3)
	require.Equal(t, 3, res.Skipped[0].Line)
	require.Equal(t, SkipEmptyField, res.Skipped[0].Reason)
	require.Equal(t, SkipInvalidDay, res.Skipped[1].Reason)
	require.Equal(t, SkipInvertedDay, res.Skipped[2].Reason)
	for _, p := range res.Periods {
		require.LessOrEqual(t, p.StartDay, p.EndDay)
	}
}

func TestParseMissingFieldsSkipped(t *testing.T) {
	res, err := Parse("id,month,startDay,endDay\nСогласия 50,июля,10")
	require.NoError(t, err)
	require.Empty(t, res.Periods)
	require.Len(t, res.Skipped, 1)
}

func TestParseMalformedDocument(t *testing.T) {
	for _, in := range []string{"", "   \n ", "id,month,startDay,endDay"} {
		_, err := Parse(in)
		require.ErrorIs(t, err, ErrMalformedDocument, "input %q", in)
	}
}

func TestResolveMonth(t *testing.T) {
	for _, tok := range []string{"Январь", "январь", "января", "JAN", " jan "} {
		m, ok := ResolveMonth(tok)
		require.True(t, ok, tok)
		require.Equal(t, time.January, m, tok)
	}

	m, ok := ResolveMonth("июля")
	require.True(t, ok)
	require.Equal(t, time.July, m)

	_, ok = ResolveMonth("июлz")
	require.False(t, ok)

	require.Equal(t, "Июль", MonthTitle(time.July))
	require.Empty(t, MonthTitle(0))
}

func TestPropertyMapper(t *testing.T) {
	m := DefaultPropertyMapper()

	id, ok := m.Lookup("Согласия 50")
	require.True(t, ok)
	require.Equal(t, listings.PropertyID(3), id)

	id, ok = m.Lookup("ЛЕНИНСКИЙ 36 1 КОМНАТА")
	require.True(t, ok)
	require.Equal(t, listings.PropertyID(2), id)

	_, ok = m.Lookup("Согласия")
	require.False(t, ok)
	_, ok = m.Lookup(" Согласия 50")
	require.False(t, ok)

	again, _ := m.Lookup("Ленинский 36 комната 2")
	require.Equal(t, listings.PropertyID(1), again)
}

func TestSnapshotExpandsScenario(t *testing.T) {
	res, err := Parse("id,month,startDay,endDay\nСогласия 50,июля,10,15\nНеизвестно,июля,1,2")
	require.NoError(t, err)

	fetched := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	snap := NewSnapshot(res.Periods, DefaultPropertyMapper(), fetched)
	require.Len(t, snap.RentPeriods, 2)
	require.Len(t, snap.ByProperty, 1)
	require.Len(t, snap.Periods(3), 1)

	dates := snap.UnavailableDates(3, 2025)
	require.Len(t, dates, 6)
	for i, d := range dates {
		require.Equal(t, daterange.Date(2025, time.July, 10+i), d)
	}

	require.Equal(t, []int{10, 11, 12, 13, 14, 15}, snap.RentedDays(3, 2025, time.July))
	require.Empty(t, snap.RentedDays(3, 2025, time.August))
	require.True(t, snap.RentedOn(3, time.Date(2025, time.July, 12, 18, 0, 0, 0, time.UTC)))
	require.False(t, snap.RentedOn(3, time.Date(2025, time.July, 16, 0, 0, 0, 0, time.UTC)))
	require.Empty(t, snap.UnavailableDates(1, 2025))
}

func TestSnapshotDeduplicatesOverlaps(t *testing.T) {
	periods := []RentPeriod{
		{ID: "Ленинский 36 2 комнаты", Month: "августа", StartDay: 5, EndDay: 8},
		{ID: "Ленинский 36 комната 2", Month: "aug", StartDay: 7, EndDay: 9},
		{ID: "Ленинский 36 2 комнаты", Month: "июля", StartDay: 30, EndDay: 31},
	}
	snap := NewSnapshot(periods, DefaultPropertyMapper(), time.Time{})

	dates := snap.UnavailableDates(1, 2025)
	require.Len(t, dates, 7)
	require.Equal(t, daterange.Date(2025, time.July, 30), dates[0])
	require.Equal(t, daterange.Date(2025, time.August, 9), dates[len(dates)-1])
	require.Equal(t, []int{5, 6, 7, 8, 9}, snap.RentedDays(1, 2025, time.August))
}

func TestOversizedRowStaysInsideItsMonth(t *testing.T) {
	res, err := Parse("id,month,start,end\nСогласия 50,июля,1,5000000\nСогласия 50,февраля,27,31\nСогласия 50,мая,-3,0\n")
	require.NoError(t, err)
	require.Len(t, res.Periods, 3)

	huge := res.Periods[0]
	require.True(t, huge.Clipped(2025))
	dates := huge.Dates(2025)
	require.Len(t, dates, 31)
	for _, d := range dates {
		require.Equal(t, time.July, d.Month())
	}

	feb := res.Periods[1]
	require.True(t, feb.Clipped(2025))
	require.Len(t, feb.Dates(2025), 2)
	require.Len(t, feb.Dates(2024), 3)

	require.Empty(t, res.Periods[2].Dates(2025))
	require.False(t, RentPeriod{ID: "x", Month: "июля", StartDay: 1, EndDay: 31}.Clipped(2025))

	snap := NewSnapshot(res.Periods, DefaultPropertyMapper(), time.Time{})
	require.Len(t, snap.UnavailableDates(3, 2025), 33)
	require.Len(t, snap.RentedDays(3, 2025, time.July), 31)
	require.Equal(t, []int{27, 28}, snap.RentedDays(3, 2025, time.February))
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	snap := NewSnapshot([]RentPeriod{{ID: "Согласия 50", Month: "июля", StartDay: 1, EndDay: 2}}, DefaultPropertyMapper(), time.Time{})
	cp := snap.Clone()
	cp.ByProperty[3][0].EndDay = 20
	cp.RentPeriods[0].ID = "x"

	require.Equal(t, 2, snap.ByProperty[3][0].EndDay)
	require.Equal(t, "Согласия 50", snap.RentPeriods[0].ID)
}

func TestStatus(t *testing.T) {
	d := []time.Time{daterange.Date(2025, time.July, 10)}
	require.Equal(t, StatusLoaded, Loaded(d).Kind())
	require.Equal(t, d, Loaded(d).Dates())
	require.True(t, Loaded(nil).Known())

	require.Equal(t, StatusLoading, Loading().Kind())
	require.Empty(t, Loading().Dates())
	require.Equal(t, StatusLoading, Status{}.Kind())

	u := Unavailable(ErrMalformedDocument)
	require.Equal(t, StatusUnavailable, u.Kind())
	require.Empty(t, u.Dates())
	require.False(t, u.Known())
	require.ErrorIs(t, u.Err(), ErrMalformedDocument)
}
