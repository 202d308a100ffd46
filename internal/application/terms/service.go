package terms

import (
	"context"
	"errors"
	"fmt"

	"erp-backend/internal/application/costs"
	"erp-backend/internal/domain"
	"erp-backend/internal/infrastructure/keylock"
	"erp-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

// Service manages the terms and conditions attached to a quotation. Terms never touch totals but,
// like items, may only change while the quotation is Draft.
type Service struct {
	DB     *gorm.DB
	Locker keylock.Locker
}

type CreateTermInput struct {
	Title     string `json:"title"`
	Content   string `json:"content" validate:"required"`
	SortOrder *int   `json:"sortOrder" validate:"omitempty,gte=0"`
}

type UpdateTermInput struct {
	Title     *string `json:"title"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	SortOrder *int    `json:"sortOrder" validate:"omitempty,gte=0"`
}

func (s *Service) List(ctx context.Context, qid domain.QuotationID) ([]domain.QuotationTerm, error) {
	db := s.DB.WithContext(ctx)
	if _, err := costs.LoadQuotation(db, qid); err != nil {
		return nil, err
	}
	terms := []domain.QuotationTerm{}
	if err := db.Where("quotation_id = ?", qid).Order("sort_order ASC, id ASC").Find(&terms).Error; err != nil {
		return nil, err
	}
	return terms, nil
}

func (s *Service) Create(ctx context.Context, qid domain.QuotationID, in CreateTermInput) (*domain.QuotationTerm, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	term := domain.QuotationTerm{QuotationID: qid, Title: in.Title, Content: in.Content}
	err := s.mutate(ctx, qid, func(tx *gorm.DB) error {
		if in.SortOrder != nil {
			term.SortOrder = *in.SortOrder
		} else {
			// Append after the current last term.
			var last domain.QuotationTerm
			err := tx.Where("quotation_id = ?", qid).Order("sort_order DESC").Limit(1).Find(&last).Error
			if err != nil {
				return err
			}
			if last.ID != 0 {
				term.SortOrder = last.SortOrder + 1
			}
		}
		return tx.Create(&term).Error
	})
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (s *Service) Update(ctx context.Context, qid domain.QuotationID, termID uint, in UpdateTermInput) (*domain.QuotationTerm, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var term domain.QuotationTerm
	err := s.mutate(ctx, qid, func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND quotation_id = ?", termID, qid).First(&term).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTermNotFound
			}
			return err
		}
		if in.Title != nil {
			term.Title = *in.Title
		}
		if in.Content != nil {
			term.Content = *in.Content
		}
		if in.SortOrder != nil {
			term.SortOrder = *in.SortOrder
		}
		return tx.Save(&term).Error
	})
	if err != nil {
		return nil, err
	}
	return &term, nil
}

func (s *Service) Delete(ctx context.Context, qid domain.QuotationID, termID uint) error {
	return s.mutate(ctx, qid, func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND quotation_id = ?", termID, qid).Delete(&domain.QuotationTerm{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrTermNotFound
		}
		return nil
	})
}

func (s *Service) mutate(ctx context.Context, qid domain.QuotationID, fn func(tx *gorm.DB) error) error {
	return keylock.With(ctx, s.Locker, qid.LockKey(), func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q, err := costs.LoadQuotation(tx, qid)
			if err != nil {
				return err
			}
			if !q.Editable() {
				return fmt.Errorf("%w: quotation %s is %s", domain.ErrQuotationNotEditable, qid, q.Status)
			}
			if err := fn(tx); err != nil {
				return err
			}
			// A status change racing this edit must see a newer revision.
			return q.Apply(tx, nil)
		})
	})
}
