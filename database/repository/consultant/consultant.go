package consultantRepo

import "tray/models"

// ConsultantRepository exposes the consultant projection the payout engine
// and booking flows need.
type ConsultantRepository interface {
	GetByID(consultantID string) (*models.Consultant, error)
	Upsert(consultant *models.Consultant) error
	SetStripeAccountID(consultantID, accountID string) error
}
