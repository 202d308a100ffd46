package items

import (
	"context"
	"errors"
	"fmt"

	"erp-backend/internal/application/costs"
	"erp-backend/internal/domain"
	"erp-backend/internal/infrastructure/keylock"
	"erp-backend/internal/pkg/validation"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxAttempts bounds how often an item mutation is retried after losing the revision race.
const maxAttempts = 3

// Service owns quotation line items. Every mutation recomputes the quotation totals in the same
// transaction as the item write.
type Service struct {
	DB     *gorm.DB
	Locker keylock.Locker
}

type CreateItemInput struct {
	Category    string                 `json:"category" validate:"required"`
	Trade       string                 `json:"trade"`
	ItemName    string                 `json:"itemName" validate:"required"`
	Description string                 `json:"description"`
	Quantity    *float64               `json:"quantity" validate:"required,gte=0"`
	Unit        string                 `json:"unit"`
	UnitRate    *float64               `json:"unitRate" validate:"required,gte=0"`
	Meta        map[string]interface{} `json:"meta"`
}

// UpdateItemInput applies only the fields present in the request.
type UpdateItemInput struct {
	Category    *string                `json:"category"`
	Trade       *string                `json:"trade"`
	ItemName    *string                `json:"itemName" validate:"omitempty,min=1"`
	Description *string                `json:"description"`
	Quantity    *float64               `json:"quantity" validate:"omitempty,gte=0"`
	Unit        *string                `json:"unit"`
	UnitRate    *float64               `json:"unitRate" validate:"omitempty,gte=0"`
	Meta        map[string]interface{} `json:"meta"`
}

func (s *Service) List(ctx context.Context, qid domain.QuotationID) ([]domain.QuotationItem, error) {
	db := s.DB.WithContext(ctx)
	if _, err := costs.LoadQuotation(db, qid); err != nil {
		return nil, err
	}
	items := []domain.QuotationItem{}
	if err := db.Where("quotation_id = ?", qid).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) Get(ctx context.Context, qid domain.QuotationID, itemID uint) (*domain.QuotationItem, error) {
	return loadItem(s.DB.WithContext(ctx), qid, itemID)
}

// Create adds a line to a Draft quotation.
func (s *Service) Create(ctx context.Context, qid domain.QuotationID, in CreateItemInput) (*domain.QuotationItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	category, err := domain.ParseCategory(in.Category)
	if err != nil {
		return nil, err
	}

	var item domain.QuotationItem
	err = s.mutate(ctx, qid, func(tx *gorm.DB, q *domain.Quotation) error {
		item = domain.QuotationItem{
			QuotationID: qid,
			Category:    category,
			Trade:       in.Trade,
			ItemName:    in.ItemName,
			Description: in.Description,
			Quantity:    *in.Quantity,
			Unit:        in.Unit,
			UnitRate:    *in.UnitRate,
			TotalAmount: costs.LineAmount(*in.Quantity, *in.UnitRate),
		}
		if in.Meta != nil {
			item.Meta = datatypes.JSONMap(in.Meta)
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		_, err := costs.Recompute(tx, q)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Update edits a line of a Draft quotation. TotalAmount is always rederived.
func (s *Service) Update(ctx context.Context, qid domain.QuotationID, itemID uint, in UpdateItemInput) (*domain.QuotationItem, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var category domain.CostCategory
	if in.Category != nil {
		c, err := domain.ParseCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		category = c
	}

	var item *domain.QuotationItem
	err := s.mutate(ctx, qid, func(tx *gorm.DB, q *domain.Quotation) error {
		it, err := loadItem(tx, qid, itemID)
		if err != nil {
			return err
		}
		if category != "" {
			it.Category = category
		}
		if in.Trade != nil {
			it.Trade = *in.Trade
		}
		if in.ItemName != nil {
			it.ItemName = *in.ItemName
		}
		if in.Description != nil {
			it.Description = *in.Description
		}
		if in.Quantity != nil {
			it.Quantity = *in.Quantity
		}
		if in.Unit != nil {
			it.Unit = *in.Unit
		}
		if in.UnitRate != nil {
			it.UnitRate = *in.UnitRate
		}
		if in.Meta != nil {
			it.Meta = datatypes.JSONMap(in.Meta)
		}
		it.TotalAmount = costs.LineAmount(it.Quantity, it.UnitRate)
		if err := tx.Save(it).Error; err != nil {
			return err
		}
		if _, err := costs.Recompute(tx, q); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a line from a Draft quotation.
func (s *Service) Delete(ctx context.Context, qid domain.QuotationID, itemID uint) error {
	return s.mutate(ctx, qid, func(tx *gorm.DB, q *domain.Quotation) error {
		res := tx.Where("id = ? AND quotation_id = ?", itemID, qid).Delete(&domain.QuotationItem{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrItemNotFound
		}
		_, err := costs.Recompute(tx, q)
		return err
	})
}

// mutate runs fn for a Draft quotation under the quotation lock, in a transaction, retrying when the
// totals update loses to a concurrent writer.
func (s *Service) mutate(ctx context.Context, qid domain.QuotationID, fn func(tx *gorm.DB, q *domain.Quotation) error) error {
	return keylock.With(ctx, s.Locker, qid.LockKey(), func() error {
		var err error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				q, err := costs.LoadQuotation(tx, qid)
				if err != nil {
					return err
				}
				if !q.Editable() {
					return fmt.Errorf("%w: quotation %s is %s", domain.ErrQuotationNotEditable, qid, q.Status)
				}
				return fn(tx, q)
			})
			if !errors.Is(err, domain.ErrConflictingWrite) {
				return err
			}
		}
		return err
	})
}

func loadItem(db *gorm.DB, qid domain.QuotationID, itemID uint) (*domain.QuotationItem, error) {
	var it domain.QuotationItem
	if err := db.Where("id = ? AND quotation_id = ?", itemID, qid).First(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	return &it, nil
}
