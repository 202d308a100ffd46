package domain

import (
	"fmt"
	"strings"
)

// CostCategory groups quotation line items for aggregation.
type CostCategory string

const (
	CategoryManpower      CostCategory = "Manpower"
	CategoryMaterial      CostCategory = "Material"
	CategoryTool          CostCategory = "Tool"
	CategoryTransport     CostCategory = "Transport"
	CategoryWarranty      CostCategory = "Warranty"
	CategoryCertification CostCategory = "Certification"
)

// Categories lists every cost category in display order.
var Categories = []CostCategory{
	CategoryManpower,
	CategoryMaterial,
	CategoryTool,
	CategoryTransport,
	CategoryWarranty,
	CategoryCertification,
}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (CostCategory, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrValidation, s)
}
