package costs

import (
	"context"

	"erp-backend/internal/domain"
)

// CategoryBreakdown is one cost category of a quotation with its items.
type CategoryBreakdown struct {
	Category  domain.CostCategory    `json:"category"`
	ItemCount int                    `json:"itemCount"`
	Subtotal  float64                `json:"subtotal"`
	Items     []domain.QuotationItem `json:"items"`
}

// Breakdown is the aggregated read view served by the cost-breakdown endpoint.
// Totals are the values stored on the quotation; Consistent reports whether they match a fresh sum
// and add up to their grand total, both to the cent.
type Breakdown struct {
	QuotationID   domain.QuotationID     `json:"quotationId"`
	QuotationCode string                 `json:"quotationCode"`
	ProjectName   string                 `json:"projectName"`
	Status        domain.QuotationStatus `json:"status"`
	Version       int                    `json:"version"`
	Categories    []CategoryBreakdown    `json:"categories"`
	Totals        domain.CostTotals      `json:"totals"`
	Consistent    bool                   `json:"consistent"`
}

// Breakdown groups a quotation's items by category, every category present even when empty.
func (e *Engine) Breakdown(ctx context.Context, id domain.QuotationID) (*Breakdown, error) {
	db := e.DB.WithContext(ctx)
	q, err := LoadQuotation(db, id)
	if err != nil {
		return nil, err
	}
	var items []domain.QuotationItem
	if err := db.Where("quotation_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}

	byCategory := make(map[domain.CostCategory][]domain.QuotationItem)
	for _, it := range items {
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}
	computed := Sum(items)

	out := &Breakdown{
		QuotationID: q.ID,
		ProjectName: q.ProjectName,
		Status:      q.Status,
		Version:     q.Version,
		Categories:  make([]CategoryBreakdown, 0, len(domain.Categories)),
		Totals:      q.Totals(),
		Consistent:  computed.Equal(q.Totals()) && q.Totals().Balanced(),
	}
	if q.QuotationCode != nil {
		out.QuotationCode = *q.QuotationCode
	}
	for _, c := range domain.Categories {
		list := byCategory[c]
		if list == nil {
			list = []domain.QuotationItem{}
		}
		out.Categories = append(out.Categories, CategoryBreakdown{
			Category:  c,
			ItemCount: len(list),
			Subtotal:  computed.Get(c),
			Items:     list,
		})
	}
	return out, nil
}
