package availability

import (
	"strings"
	"time"
)

// monthTokens covers nominative and genitive Russian names plus English abbreviations.
var monthTokens = map[string]time.Month{
	"январь": time.January, "января": time.January, "jan": time.January,
	"февраль": time.February, "февраля": time.February, "feb": time.February,
	"март": time.March, "марта": time.March, "mar": time.March,
	"апрель": time.April, "апреля": time.April, "apr": time.April,
	"май": time.May, "мая": time.May, "may": time.May,
	"июнь": time.June, "июня": time.June, "jun": time.June,
	"июль": time.July, "июля": time.July, "jul": time.July,
	"август": time.August, "августа": time.August, "aug": time.August,
	"сентябрь": time.September, "сентября": time.September, "sep": time.September,
	"октябрь": time.October, "октября": time.October, "oct": time.October,
	"ноябрь": time.November, "ноября": time.November, "nov": time.November,
	"декабрь": time.December, "декабря": time.December, "dec": time.December,
}

var monthTitles = [12]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

// ResolveMonth maps a month token from the sheet to its number.
func ResolveMonth(token string) (time.Month, bool) {
	m, ok := monthTokens[strings.ToLower(strings.TrimSpace(token))]
	return m, ok
}

// MonthTitle returns the nominative Russian month name used in calendar headers.
func MonthTitle(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthTitles[m-1]
}
