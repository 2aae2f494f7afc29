package models

// Frequency is how often a group collects installments
type Frequency string

const (
	FrequencyMonthly Frequency = "Monthly"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyDaily   Frequency = "Daily"
)

// Group represents a chit scheme: a fixed pool of members paying installments
// towards a chit amount that is auctioned once per cycle
type Group struct {
	ID                      string    `json:"id"`
	Name                    string    `json:"name" validate:"required"`
	TotalMembers            int       `json:"totalMembers" validate:"gt=0"`
	ChitAmount              float64   `json:"chitAmount" validate:"gt=0"`
	InstallmentAmount       float64   `json:"installmentAmount" validate:"gt=0"`
	Frequency               Frequency `json:"frequency" validate:"oneof=Monthly Weekly Daily"`
	StartDate               string    `json:"startDate"`
	LiftedInstallmentAmount float64   `json:"liftedInstallmentAmount" validate:"gte=0"`
}
