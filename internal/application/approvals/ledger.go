// Package approvals is the append-only record of approval decisions.
package approvals

import (
	"context"
	"fmt"
	"time"

	"erp-backend/internal/application/costs"
	"erp-backend/internal/domain"

	"gorm.io/gorm"
)

type Ledger struct {
	DB *gorm.DB
}

// Record appends a decision inside the caller's transaction. ActionAt defaults to now.
func Record(tx *gorm.DB, entry *domain.QuotationApproval) error {
	if entry.QuotationID == 0 || entry.ApproverID == 0 {
		return fmt.Errorf("%w: approval entry needs quotation and approver", domain.ErrValidation)
	}
	if entry.Action != domain.ActionApproved && entry.Action != domain.ActionRejected {
		return fmt.Errorf("%w: unknown approval action %q", domain.ErrValidation, entry.Action)
	}
	if entry.ActionAt.IsZero() {
		entry.ActionAt = time.Now().UTC()
	}
	return tx.Create(entry).Error
}

// History lists decisions for a quotation, newest first.
func (l *Ledger) History(ctx context.Context, qid domain.QuotationID) ([]domain.QuotationApproval, error) {
	db := l.DB.WithContext(ctx)
	if _, err := costs.LoadQuotation(db, qid); err != nil {
		return nil, err
	}
	entries := []domain.QuotationApproval{}
	if err := db.Where("quotation_id = ?", qid).Order("action_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
