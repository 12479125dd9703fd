// Package outbound persists the outbound delivery queue: operator-authored
// envelopes waiting to be sent to chat users.
//
// The table is the only queue state. Status is the only coordination field
// between the enqueue surface and the dispatcher; every method is a single
// atomic statement.
package outbound

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gembot/internal/bot/models"
)

// Repository describes queue storage operations.
type Repository interface {
	// Insert stores a new pending envelope and returns its assigned id.
	Insert(ctx context.Context, e *models.OutboundEnvelope) (int64, error)

	// ListPending returns pending envelopes in ascending id order.
	ListPending(ctx context.Context) ([]models.OutboundEnvelope, error)

	// MarkSent moves a pending envelope to sent. Envelopes that are already
	// sent are left untouched. Unknown ids yield common.ErrorNotFound.
	MarkSent(ctx context.Context, id int64, at time.Time) error

	// RecordFailure counts a failed delivery attempt. When maxAttempts > 0 and
	// the count reaches it, the envelope moves to failed. Returns the status
	// after the update.
	RecordFailure(ctx context.Context, id int64, reason string, maxAttempts int) (models.EnvelopeStatus, error)

	// GetByID returns a single envelope.
	GetByID(ctx context.Context, id int64) (*models.OutboundEnvelope, error)

	// CountByStatus returns the number of envelopes per status.
	CountByStatus(ctx context.Context) (map[models.EnvelopeStatus]int64, error)
}
