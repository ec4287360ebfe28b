// Package month содержит помощники для работы с календарными месяцами в отчётах.
package month

import (
	"time"
)

// Name возвращает сокращённое английское название месяца (Jan..Dec) по номеру 1..12;
// для остальных — пустую строку.
func Name(n int) string {
	if n < 1 || n > 12 {
		return ""
	}
	return time.Month(n).String()[:3]
}

// YearBounds возвращает полуинтервал [1 января year, 1 января year+1) в UTC.
func YearBounds(year int) (from, to time.Time) {
	from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(1, 0, 0)
}

// ValidYear сообщает, подходит ли год для отчёта по месяцам.
func ValidYear(year int) bool {
	return year >= 1 && year <= 9999
}
