package paymentRepo

import "tray/models"

// PaymentRepository is the ledger of captured checkout charges.
type PaymentRepository interface {
	Create(txn *models.PaymentTransaction) error
	GetByChargeID(chargeID string) (*models.PaymentTransaction, error)
	MarkRefunded(chargeID string) error
	ListByStudent(studentID string) ([]models.PaymentTransaction, error)
}
