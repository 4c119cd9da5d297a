package flow

import "fmt"

// Workflow identifies one of the kiosk experience variants
type Workflow string

const (
	NoParkFee         Workflow = "NoParkFeeFlow"
	OptionalDonation  Workflow = "OptionalDonationFlow"
	MandatoryDonation Workflow = "MandatoryDonationFlow"
	ParkFee           Workflow = "ParkFeeFlow"
)

// Workflows lists every supported variant
var Workflows = []Workflow{NoParkFee, OptionalDonation, MandatoryDonation, ParkFee}

// ParseWorkflow validates a workflow name
func ParseWorkflow(name string) (Workflow, error) {
	for _, w := range Workflows {
		if string(w) == name {
			return w, nil
		}
	}
	return "", fmt.Errorf("%w: unknown workflow %q", ErrInvalidInput, name)
}

// CollectsNickname reports whether paying users are asked for a leaderboard nickname
func (w Workflow) CollectsNickname() bool {
	return w == OptionalDonation || w == MandatoryDonation || w == ParkFee
}

// AlwaysPays reports whether every session of the workflow is charged
func (w Workflow) AlwaysPays() bool {
	return w == MandatoryDonation
}

// OffersSkip reports whether the duration screen shows the skip button
func (w Workflow) OffersSkip() bool {
	return w == OptionalDonation
}

// ChargesFee reports whether the duration screen lists fees rather than days
func (w Workflow) ChargesFee() bool {
	return w != NoParkFee
}
