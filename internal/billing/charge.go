package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/maayanhealth/clinic-api/internal/model"
)

var hundred = decimal.NewFromInt(100)

// BaseCharge computes the patient's accumulated monthly charge from the
// treatment start through asOf (or through EndDate when the current
// status is terminal), walking the period month by month. Each eligible
// day contributes rate/daysInMonth, so a mid-month rate change or
// freeze is reflected proportionally within that month. Approved
// discounts overlapping a month apply to that month's subtotal in the
// order they are stored: fixed amounts subtract (floored at zero),
// percentages scale what remains.
//
// Absent data degrades to zero: no start date, no rate history, or an
// inverted date range all yield a zero charge rather than an error.
func BaseCharge(p *model.Patient, asOf time.Time) decimal.Decimal {
	if p.StartDate.IsZero() || len(p.RateHistory) == 0 {
		return decimal.Zero
	}

	end := asOf
	if p.EndDate != nil && !p.EndDate.IsZero() && p.Status.Terminal() {
		end = *p.EndDate
	}
	if p.StartDate.After(end) {
		return decimal.Zero
	}

	total := decimal.Zero
	year, month := p.StartDate.Year(), p.StartDate.Month()
	endYear, endMonth := end.Year(), end.Month()
	for year < endYear || (year == endYear && month <= endMonth) {
		total = total.Add(monthCharge(p, year, month, end))
		month++
		if month > time.December {
			month = time.January
			year++
		}
	}
	return total
}

func monthCharge(p *model.Patient, year int, month time.Month, treatmentEnd time.Time) decimal.Decimal {
	days := daysInMonth(year, month)
	divisor := decimal.NewFromInt(int64(days))

	firstDay := 1
	if year == p.StartDate.Year() && month == p.StartDate.Month() {
		firstDay = p.StartDate.Day()
	}
	lastDay := days
	if year == treatmentEnd.Year() && month == treatmentEnd.Month() {
		lastDay = treatmentEnd.Day()
	}

	charge := decimal.Zero
	for day := firstDay; day <= lastDay; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

		if entry := ResolveStatus(p.StatusHistory, date); entry != nil && entry.Status == model.PatientStatusFrozen {
			continue
		}
		if entry := ResolveRate(p.RateHistory, date); entry != nil && entry.Rate.IsPositive() {
			charge = charge.Add(entry.Rate.Div(divisor))
		}
	}

	for _, d := range p.Discounts {
		if d.Status != model.DiscountStatusApproved || !monthInWindow(year, month, d.ValidFrom, d.ValidUntil) {
			continue
		}
		switch d.Kind {
		case model.DiscountKindFixedAmount:
			charge = decimal.Max(decimal.Zero, charge.Sub(d.Value))
		case model.DiscountKindPercentage:
			charge = charge.Mul(hundred.Sub(d.Value)).Div(hundred)
		}
	}
	return charge
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// monthInWindow reports whether year/month falls inside [from, until]
// at month granularity.
func monthInWindow(year int, month time.Month, from, until time.Time) bool {
	idx := year*12 + int(month)
	return idx >= from.Year()*12+int(from.Month()) && idx <= until.Year()*12+int(until.Month())
}
