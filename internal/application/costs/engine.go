// Package costs keeps quotation cost totals consistent with their line items.
//
// Totals are always rebuilt from the full item set, never adjusted by deltas, so a missed update
// path cannot leave a quotation drifting from its items.
package costs

import (
	"context"
	"errors"

	"erp-backend/internal/domain"
	"erp-backend/internal/metrics"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Engine struct {
	DB *gorm.DB
}

// LineAmount is quantity * unitRate rounded half-up to 2 decimals.
func LineAmount(quantity, unitRate float64) float64 {
	return lineAmount(quantity, unitRate).InexactFloat64()
}

func lineAmount(quantity, unitRate float64) decimal.Decimal {
	return decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(unitRate)).Round(2)
}

// Sum aggregates items into category totals and a grand total. Stored TotalAmount values are
// ignored; every line is recomputed from quantity and unit rate.
func Sum(items []domain.QuotationItem) domain.CostTotals {
	sums := make(map[domain.CostCategory]decimal.Decimal, len(domain.Categories))
	for _, it := range items {
		sums[it.Category] = sums[it.Category].Add(lineAmount(it.Quantity, it.UnitRate))
	}
	grand := decimal.Zero
	for _, c := range domain.Categories {
		grand = grand.Add(sums[c])
	}
	return domain.CostTotals{
		Manpower:      sums[domain.CategoryManpower].InexactFloat64(),
		Material:      sums[domain.CategoryMaterial].InexactFloat64(),
		Tool:          sums[domain.CategoryTool].InexactFloat64(),
		Transport:     sums[domain.CategoryTransport].InexactFloat64(),
		Warranty:      sums[domain.CategoryWarranty].InexactFloat64(),
		Certification: sums[domain.CategoryCertification].InexactFloat64(),
		GrandTotal:    grand.InexactFloat64(),
	}
}

// Recompute rebuilds q's totals from its items inside tx and writes all seven fields in one UPDATE,
// conditioned on the revision q was loaded with. A concurrent writer that bumped the revision first
// causes ErrConflictingWrite and the caller's transaction must roll back. On success q carries the
// new totals and revision.
func Recompute(tx *gorm.DB, q *domain.Quotation) (domain.CostTotals, error) {
	var items []domain.QuotationItem
	if err := tx.Where("quotation_id = ?", q.ID).Order("id ASC").Find(&items).Error; err != nil {
		return domain.CostTotals{}, err
	}

	// Repair stale stored line amounts so reads of items agree with the totals.
	for i := range items {
		amt := LineAmount(items[i].Quantity, items[i].UnitRate)
		if items[i].TotalAmount != amt {
			if err := tx.Model(&domain.QuotationItem{}).Where("id = ?", items[i].ID).UpdateColumn("total_amount", amt).Error; err != nil {
				return domain.CostTotals{}, err
			}
			items[i].TotalAmount = amt
		}
	}

	totals := Sum(items)
	if err := q.Apply(tx, totals.Columns()); err != nil {
		if errors.Is(err, domain.ErrConflictingWrite) {
			metrics.RecordRecomputeConflict()
		}
		return domain.CostTotals{}, err
	}
	metrics.RecordRecompute()

	q.TotalManpowerCost = totals.Manpower
	q.TotalMaterialCost = totals.Material
	q.TotalToolCost = totals.Tool
	q.TotalTransportCost = totals.Transport
	q.TotalWarrantyCost = totals.Warranty
	q.TotalCertificationCost = totals.Certification
	q.GrandTotal = totals.GrandTotal
	return totals, nil
}

// Recompute is the standalone entry point: load the quotation and rebuild its totals in one
// transaction. It never changes status and may run in any state.
func (e *Engine) Recompute(ctx context.Context, id domain.QuotationID) (domain.CostTotals, error) {
	var totals domain.CostTotals
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := LoadQuotation(tx, id)
		if err != nil {
			return err
		}
		totals, err = Recompute(tx, q)
		return err
	})
	return totals, err
}

// LoadQuotation fetches a quotation by id, mapping a missing row to ErrQuotationNotFound.
func LoadQuotation(tx *gorm.DB, id domain.QuotationID) (*domain.Quotation, error) {
	var q domain.Quotation
	if err := tx.Where("id = ?", id).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuotationNotFound
		}
		return nil, err
	}
	return &q, nil
}
