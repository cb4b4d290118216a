package billing

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/imobia/backend/internal/domain/shared"
)

// Competencia identifies a billing period in "YYYY-MM" form: the calendar
// month the rent refers to.
type Competencia string

// NewCompetencia builds a competência from a year and month.
func NewCompetencia(year int, month time.Month) Competencia {
	return Competencia(fmt.Sprintf("%04d-%02d", year, int(month)))
}

// Parse splits the competência into year and month.
func (c Competencia) Parse() (int, time.Month, error) {
	var year, month int
	if _, err := fmt.Sscanf(string(c), "%4d-%2d", &year, &month); err != nil {
		return 0, 0, shared.NewDomainError("INVALID_COMPETENCIA", "Competência must be in YYYY-MM format")
	}
	if month < 1 || month > 12 {
		return 0, 0, shared.NewDomainError("INVALID_COMPETENCIA", "Competência month out of range")
	}
	return year, time.Month(month), nil
}

func (c Competencia) String() string { return string(c) }

var ptBRMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// DisplayPtBR renders the competência for payer-facing text, e.g.
// "Março/2026". Falls back to the raw YYYY-MM form when unparseable.
func (c Competencia) DisplayPtBR() string {
	year, month, err := c.Parse()
	if err != nil {
		return string(c)
	}
	name := cases.Title(language.BrazilianPortuguese).String(ptBRMonths[month-1])
	return fmt.Sprintf("%s/%04d", name, year)
}

// Period is the coverage window of one invoice. End always equals DueDate.
type Period struct {
	Start   time.Time
	End     time.Time
	DueDate time.Time
}

// ComputeCompetencia derives the billing period that is coming due next.
// When the reference day-of-month is strictly before the contract due day the
// competência is the reference month; otherwise it rolls to the next month.
func ComputeCompetencia(dueDay int, ref time.Time) Competencia {
	if ref.Day() < dueDay {
		return NewCompetencia(ref.Year(), ref.Month())
	}
	next := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	return NewCompetencia(next.Year(), next.Month())
}

// ComputePeriod resolves the coverage window and due date for a competência.
// The due date is the contract due day clamped to the last calendar day of
// the competência month. The period starts one day after the previous
// month's (likewise clamped) due date and ends on the due date.
func ComputePeriod(dueDay int, c Competencia) (Period, error) {
	year, month, err := c.Parse()
	if err != nil {
		return Period{}, err
	}

	dueDate := dateWithClampedDay(year, month, dueDay)

	prevYear, prevMonth := year, month-1
	if prevMonth < time.January {
		prevMonth = time.December
		prevYear--
	}
	start := dateWithClampedDay(prevYear, prevMonth, dueDay).AddDate(0, 0, 1)

	return Period{Start: start, End: dueDate, DueDate: dueDate}, nil
}

// dateWithClampedDay builds a date, pulling the day back to the last day of
// the month when it does not exist (due day 31 in a 30-day month).
func dateWithClampedDay(year int, month time.Month, day int) time.Time {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
