package flow

import "github.com/parkonomy/kiosk-backend/internal/models"

// Options returns the choices EnterStayDuration offers for a workflow.
// Once an optional donation is skipped the list switches to stay lengths.
func Options(w Workflow, skipped bool) []Choice {
	switch {
	case w == MandatoryDonation:
		return feeChoices(models.ParkingFees)
	case (w == OptionalDonation || w == ParkFee) && !skipped:
		return feeChoices(models.ParkingFeesWithoutHours)
	}

	out := make([]Choice, 0, len(models.Days))
	for _, d := range models.Days {
		out = append(out, Choice{Days: d.Days, Skipped: skipped})
	}
	return out
}

func feeChoices(fees []models.FeeOption) []Choice {
	out := make([]Choice, 0, len(fees))
	for _, f := range fees {
		out = append(out, Choice{Fee: f.Fee})
	}
	return out
}

func offered(w Workflow, skipped bool, c Choice) (Choice, bool) {
	for _, o := range Options(w, skipped) {
		if c.Fee != "" && o.Fee == c.Fee {
			return o, true
		}
		if c.Fee == "" && c.Days > 0 && o.Days == c.Days {
			return o, true
		}
	}
	return Choice{}, false
}
