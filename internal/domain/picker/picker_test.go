package picker

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"rentdom/internal/domain/availability"
	"rentdom/internal/domain/shared/daterange"
)

func july(day int) time.Time {
	return daterange.Date(2025, time.July, day)
}

func blockedJuly() []time.Time {
	var out []time.Time
	for d := 10; d <= 15; d++ {
		out = append(out, july(d))
	}
	return out
}

func openState(p *Picker) State {
	return p.Toggle(p.Initial(Selection{}))
}

func TestClickBuildsRange(t *testing.T) {
	p := New(july(1), blockedJuly())
	s := openState(p)
	require.Equal(t, NoSelection, s.Selection.Phase())

	s, ch := p.Click(s, july(2))
	require.True(t, ch.Emitted)
	require.Equal(t, StartSelected, s.Selection.Phase())
	require.True(t, s.Open)

	s, ch = p.Click(s, july(6))
	require.True(t, ch.Emitted)
	require.Equal(t, RangeSelected, s.Selection.Phase())
	require.False(t, s.Open)
	require.Equal(t, july(2), *ch.Selection.Start)
	require.Equal(t, july(6), *ch.Selection.End)

	s = p.Toggle(s)
	s, _ = p.Click(s, july(20))
	require.Equal(t, StartSelected, s.Selection.Phase())
	require.Equal(t, july(20), *s.Selection.Start)
	require.Nil(t, s.Selection.End)
}

func TestClickBeforeStartRestarts(t *testing.T) {
	p := New(july(1), nil)
	s := openState(p)
	s, _ = p.Click(s, july(8))
	s, ch := p.Click(s, july(3))
	require.True(t, ch.Emitted)
	require.Equal(t, StartSelected, s.Selection.Phase())
	require.Equal(t, july(3), *s.Selection.Start)
	require.True(t, s.Open)
}

func TestClickDisabledIgnored(t *testing.T) {
	p := New(july(5), blockedJuly(), WithMaxDate(july(25)))
	s := openState(p)

	for _, d := range []time.Time{july(4), july(12), july(26)} {
		next, ch := p.Click(s, d)
		require.False(t, ch.Emitted)
		require.Equal(t, s, next)
	}

	s, ch := p.Click(s, july(5))
	require.True(t, ch.Emitted, "min date itself is selectable")
	require.Equal(t, july(5), *s.Selection.Start)
}

func TestMinDateMovesTheLowerBound(t *testing.T) {
	earlier := New(july(10), nil, WithMinDate(july(5)))
	s, ch := earlier.Click(openState(earlier), july(6))
	require.True(t, ch.Emitted, "days before today are allowed above the min date")
	require.Equal(t, july(6), *s.Selection.Start)
	require.True(t, earlier.IsDisabled(july(4)))

	later := New(july(1), blockedJuly(), WithMinDate(july(18)))
	require.True(t, later.IsDisabled(july(17)))
	require.False(t, later.IsDisabled(july(18)))
	_, ch = later.Click(openState(later), july(17))
	require.False(t, ch.Emitted)
}

func TestDuplicateUnavailableDaysCollapse(t *testing.T) {
	p := New(july(1), []time.Time{july(12), july(12).Add(9 * time.Hour), july(12)})
	require.True(t, p.SpanBlocked(july(14), july(11)))
	require.False(t, p.SpanBlocked(july(13), july(20)))
	require.Len(t, p.blocked, 1)
}

func TestClickWhileClosedIgnored(t *testing.T) {
	p := New(july(1), nil)
	s := p.Initial(Selection{})
	next, ch := p.Click(s, july(3))
	require.False(t, ch.Emitted)
	require.Nil(t, next.Selection.Start)
}

func TestHoverAcrossBlockedSpanThenRestart(t *testing.T) {
	p := New(july(1), blockedJuly())
	s := openState(p)
	s, _ = p.Click(s, july(5))

	s = p.Hover(s, july(12))
	require.NotNil(t, s.Hover)
	for d := 5; d <= 12; d++ {
		require.False(t, p.InRange(s, july(d)), "day %d", d)
	}
	_, ok := p.PreviewRange(s)
	require.False(t, ok)
	require.Equal(t, july(5), *s.Selection.Start, "hover never commits")

	// the blocked day itself cannot be picked
	same, ch := p.Click(s, july(12))
	require.False(t, ch.Emitted)
	require.Equal(t, july(5), *same.Selection.Start)

	// a clean day past the block restarts the selection there
	s, ch = p.Click(s, july(17))
	require.True(t, ch.Emitted)
	require.Equal(t, StartSelected, s.Selection.Phase())
	require.Equal(t, july(17), *s.Selection.Start)
	require.Nil(t, s.Selection.End)
	require.True(t, s.Open)
}

func TestHoverPreviewWithinFreeSpan(t *testing.T) {
	p := New(july(1), blockedJuly())
	s := openState(p)
	s, _ = p.Click(s, july(2))
	s = p.Hover(s, july(7))

	require.True(t, p.InRange(s, july(4)))
	require.False(t, p.InRange(s, july(8)))
	r, ok := p.PreviewRange(s)
	require.True(t, ok)
	require.Equal(t, 6, r.Days())

	s = p.Leave(s)
	require.Nil(t, s.Hover)
	require.False(t, p.InRange(s, july(4)))
}

func TestOutsideClickAndClear(t *testing.T) {
	p := New(july(1), nil)
	s := openState(p)
	s, _ = p.Click(s, july(3))

	closed := p.OutsideClick(s)
	require.False(t, closed.Open)
	require.Equal(t, july(3), *closed.Selection.Start)

	cleared, ch := p.Clear(p.Toggle(closed))
	require.True(t, ch.Emitted)
	require.Nil(t, ch.Selection.Start)
	require.False(t, cleared.Open)
	require.Equal(t, NoSelection, cleared.Selection.Phase())
}

func TestStaleStartIsDropped(t *testing.T) {
	p := New(july(1), blockedJuly())
	start := july(11)
	s := p.Toggle(p.Initial(Selection{Start: &start}))

	s, ch := p.Click(s, july(11))
	require.False(t, ch.Emitted)

	s, ch = p.Click(s, july(20))
	require.True(t, ch.Emitted)
	require.Equal(t, StartSelected, s.Selection.Phase())
	require.Equal(t, july(20), *s.Selection.Start)
}

func TestRandomClicksNeverCommitBlockedRange(t *testing.T) {
	blocked := []time.Time{july(10), july(11), july(20), daterange.Date(2025, time.August, 3)}
	p := New(july(1), blocked, WithMaxDate(daterange.Date(2025, time.August, 31)))
	rng := rand.New(rand.NewSource(42))

	s := openState(p)
	for i := 0; i < 5000; i++ {
		d := july(1).AddDate(0, 0, rng.Intn(70)-5)
		var ch Change
		switch rng.Intn(6) {
		case 0:
			s = p.Hover(s, d)
		case 1:
			s = p.Toggle(s)
		default:
			if !s.Open {
				s = p.Toggle(s)
			}
			s, ch = p.Click(s, d)
		}
		if r, ok := ch.Selection.Range(); ch.Emitted && ok {
			require.False(t, r.ContainsAny(blocked), "committed %v..%v", r.Start, r.End)
			require.False(t, p.IsDisabled(r.Start))
			require.False(t, p.IsDisabled(r.End))
		}
		if r, ok := s.Selection.Range(); ok {
			require.False(t, r.ContainsAny(blocked))
		}
	}
}

func TestMonthNavigation(t *testing.T) {
	p := New(july(14), nil)
	s := p.Initial(Selection{})
	require.Equal(t, july(1), s.Month)

	s = p.NextMonth(p.NextMonth(s))
	require.Equal(t, daterange.Date(2025, time.September, 1), s.Month)
	s = p.PrevMonth(s)
	require.Equal(t, daterange.Date(2025, time.August, 1), s.Month)
}

func TestGrid(t *testing.T) {
	p := New(july(3), blockedJuly())
	s := openState(p)
	s, _ = p.Click(s, july(4))
	s, _ = p.Click(s, july(8))

	g := p.Grid(s)
	require.Equal(t, "Июль 2025", g.Title)
	require.Equal(t, "Пн", g.Weekdays[0])
	require.True(t, g.HasUnavailable)
	require.True(t, g.CanClear)
	require.Equal(t, "04.07.2025 - 08.07.2025", g.DisplayText)

	// 1 July 2025 is a Tuesday
	require.True(t, g.Days[0].Blank)
	require.False(t, g.Days[1].Blank)
	require.Equal(t, july(1), g.Days[1].Date)
	require.Len(t, g.Days, 1+31)

	day := func(n int) Day { return g.Days[n] }
	require.True(t, day(2).Disabled, "before min date")
	require.True(t, day(3).Today)
	require.True(t, day(4).Selected)
	require.True(t, day(6).InRange)
	require.True(t, day(8).Selected)
	require.True(t, day(12).Unavailable)
	require.True(t, day(12).Disabled)
	require.False(t, day(20).InRange)
}

func TestDisplayText(t *testing.T) {
	start := july(4)
	require.Equal(t, DefaultPlaceholder, DisplayText(Selection{}, DefaultPlaceholder))
	require.Equal(t, "04.07.2025 - ...", DisplayText(Selection{Start: &start}, DefaultPlaceholder))
}

func TestFromStatusFailsOpen(t *testing.T) {
	loaded := FromStatus(july(1), availability.Loaded(blockedJuly()))
	require.True(t, loaded.IsDisabled(july(12)))

	for _, st := range []availability.Status{availability.Loading(), availability.Unavailable(availability.ErrMalformedDocument)} {
		p := FromStatus(july(1), st)
		require.False(t, p.IsDisabled(july(12)))
		require.False(t, p.HasUnavailable())
	}
}
