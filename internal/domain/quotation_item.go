package domain

import (
	"time"

	"gorm.io/datatypes"
)

// QuotationItem is one priced line of a quotation. TotalAmount is derived from Quantity and UnitRate
// by the cost aggregation engine and is never taken from request input.
type QuotationItem struct {
	ID          uint              `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuotationID QuotationID       `gorm:"column:quotation_id;not null;index" json:"quotationId"`
	Category    CostCategory      `gorm:"column:category;type:varchar(20);not null;index" json:"category"`
	Trade       string            `gorm:"column:trade" json:"trade"`
	ItemName    string            `gorm:"column:item_name;not null" json:"itemName"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Quantity    float64           `gorm:"column:quantity;type:decimal(18,4);not null;default:0" json:"quantity"`
	Unit        string            `gorm:"column:unit;type:varchar(32)" json:"unit"`
	UnitRate    float64           `gorm:"column:unit_rate;type:decimal(18,2);not null;default:0" json:"unitRate"`
	TotalAmount float64           `gorm:"column:total_amount;type:decimal(18,2);not null;default:0" json:"totalAmount"`
	Meta        datatypes.JSONMap `gorm:"column:meta;type:json" json:"meta"`
	CreatedAt   time.Time         `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at" json:"updatedAt"`
}

func (QuotationItem) TableName() string {
	return "quotation_items"
}
