package domain

import "time"

// QuotationTerm is a free-text condition printed with a quotation.
type QuotationTerm struct {
	ID          uint        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuotationID QuotationID `gorm:"column:quotation_id;not null;index" json:"quotationId"`
	Title       string      `gorm:"column:title" json:"title"`
	Content     string      `gorm:"column:content;type:text;not null" json:"content"`
	SortOrder   int         `gorm:"column:sort_order;not null;default:0" json:"sortOrder"`
	CreatedAt   time.Time   `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

func (QuotationTerm) TableName() string {
	return "quotation_terms"
}
