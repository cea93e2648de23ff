package completionRepo

import "tray/models"

// CompletionRepository stores session completions and refund requests.
type CompletionRepository interface {
	Create(sc *models.SessionCompletion) error
	GetByBooking(bookingID string) (*models.SessionCompletion, error)
	SetConsultantRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error)
	SetServiceRating(bookingID string, rating int, feedback string) (*models.SessionCompletion, error)
	MarkRefundRequested(bookingID, reason string) error

	CreateRefundRequest(req *models.RefundRequest) error
	GetRefundRequest(id string) (*models.RefundRequest, error)
	ResolveRefundRequest(id, status, notes, refundID string) error
	FindRefundRequests(status string) ([]models.RefundRequest, error)
}
