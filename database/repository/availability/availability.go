package availabilityRepo

import "tray/models"

// AvailabilityRepository manages consultants' bookable-hours specs.
type AvailabilityRepository interface {
	Upsert(spec *models.AvailabilitySpec) error
	GetByConsultant(consultantID string) (*models.AvailabilitySpec, error)
}
