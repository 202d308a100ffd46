package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// QuotationID is the numeric identity of a quotation. It is the only representation used past the
// HTTP edge; items, terms, ledger rows and projects join on it.
type QuotationID uint

// ParseQuotationID converts a path or query value into a QuotationID.
func ParseQuotationID(s string) (QuotationID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid quotation id %q", ErrValidation, s)
	}
	return QuotationID(n), nil
}

func (id QuotationID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// LockKey is the key every mutation of this quotation serializes on.
func (id QuotationID) LockKey() string {
	return "quotation:" + id.String()
}

// QuotationStatus is the lifecycle state of a quotation.
type QuotationStatus string

const (
	StatusDraft     QuotationStatus = "Draft"
	StatusSubmitted QuotationStatus = "Submitted"
	StatusApproved  QuotationStatus = "Approved"
	StatusRejected  QuotationStatus = "Rejected"
	StatusConverted QuotationStatus = "Converted"
)

var transitions = map[QuotationStatus][]QuotationStatus{
	StatusDraft:     {StatusSubmitted},
	StatusSubmitted: {StatusApproved, StatusRejected},
	StatusApproved:  {StatusConverted},
}

// CanTransition reports whether a quotation may move from one status to another.
func CanTransition(from, to QuotationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseQuotationStatus accepts a status name in any letter case.
func ParseQuotationStatus(s string) (QuotationStatus, error) {
	for _, st := range []QuotationStatus{StatusDraft, StatusSubmitted, StatusApproved, StatusRejected, StatusConverted} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// FormatQuotationCode renders the human-facing code for a quotation id (QT-001, QT-1234).
func FormatQuotationCode(id QuotationID) string {
	return fmt.Sprintf("QT-%03d", uint64(id))
}

// Quotation is a priced, versioned proposal for a client project.
// The seven cost fields are owned by the cost aggregation engine and are never written from request input.
type Quotation struct {
	ID                     QuotationID     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuotationCode          *string         `gorm:"column:quotation_code;type:varchar(32);uniqueIndex" json:"quotationCode"`
	CompanyID              uint            `gorm:"column:company_id;not null;index" json:"companyId"`
	ClientID               uint            `gorm:"column:client_id;not null;index" json:"clientId"`
	ProjectName            string          `gorm:"column:project_name;not null" json:"projectName"`
	Version                int             `gorm:"column:version;not null;default:1" json:"version"`
	Status                 QuotationStatus `gorm:"column:status;type:varchar(20);not null;default:'Draft';index" json:"status"`
	TotalManpowerCost      float64         `gorm:"column:total_manpower_cost;type:decimal(18,2);not null;default:0" json:"totalManpowerCost"`
	TotalMaterialCost      float64         `gorm:"column:total_material_cost;type:decimal(18,2);not null;default:0" json:"totalMaterialCost"`
	TotalToolCost          float64         `gorm:"column:total_tool_cost;type:decimal(18,2);not null;default:0" json:"totalToolCost"`
	TotalTransportCost     float64         `gorm:"column:total_transport_cost;type:decimal(18,2);not null;default:0" json:"totalTransportCost"`
	TotalWarrantyCost      float64         `gorm:"column:total_warranty_cost;type:decimal(18,2);not null;default:0" json:"totalWarrantyCost"`
	TotalCertificationCost float64         `gorm:"column:total_certification_cost;type:decimal(18,2);not null;default:0" json:"totalCertificationCost"`
	GrandTotal             float64         `gorm:"column:grand_total;type:decimal(18,2);not null;default:0" json:"grandTotal"`
	ValidUntil             *time.Time      `gorm:"column:valid_until" json:"validUntil"`
	CreatedBy              uint            `gorm:"column:created_by;not null" json:"createdBy"`
	ApprovedBy             *uint           `gorm:"column:approved_by" json:"approvedBy"`
	ApprovedAt             *time.Time      `gorm:"column:approved_at" json:"approvedAt"`
	Remarks                string          `gorm:"column:remarks;type:text" json:"remarks"`
	ProjectID              *uint           `gorm:"column:project_id" json:"projectId"`
	Revision               int             `gorm:"column:revision;not null;default:1" json:"-"`
	CreatedAt              time.Time       `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt              time.Time       `gorm:"column:updated_at" json:"updatedAt"`
}

func (Quotation) TableName() string {
	return "quotations"
}

// AfterCreate assigns the quotation code from the database-issued id, inside the insert transaction.
func (q *Quotation) AfterCreate(tx *gorm.DB) error {
	if q.QuotationCode != nil {
		return nil
	}
	code := FormatQuotationCode(q.ID)
	if err := tx.Model(q).UpdateColumn("quotation_code", code).Error; err != nil {
		return err
	}
	q.QuotationCode = &code
	return nil
}

// Apply writes cols and advances the revision, provided no other writer has advanced it since q
// was loaded. On success q.Revision is updated; the caller refreshes any other fields it changed.
func (q *Quotation) Apply(tx *gorm.DB, cols map[string]interface{}) error {
	next := make(map[string]interface{}, len(cols)+1)
	for k, v := range cols {
		next[k] = v
	}
	next["revision"] = q.Revision + 1
	res := tx.Model(&Quotation{}).Where("id = ? AND revision = ?", q.ID, q.Revision).Updates(next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: quotation %s changed concurrently", ErrConflictingWrite, q.ID)
	}
	q.Revision++
	return nil
}

// Totals returns the aggregated cost fields.
func (q *Quotation) Totals() CostTotals {
	return CostTotals{
		Manpower:      q.TotalManpowerCost,
		Material:      q.TotalMaterialCost,
		Tool:          q.TotalToolCost,
		Transport:     q.TotalTransportCost,
		Warranty:      q.TotalWarrantyCost,
		Certification: q.TotalCertificationCost,
		GrandTotal:    q.GrandTotal,
	}
}

// Editable reports whether items, terms and header fields may still change.
func (q *Quotation) Editable() bool {
	return q.Status == StatusDraft
}

// CostTotals holds the six category totals and their sum. Amounts are money with two decimal places;
// the float64 fields are exact only to the cent, so compare them with Equal and Balanced.
type CostTotals struct {
	Manpower      float64 `json:"totalManpowerCost"`
	Material      float64 `json:"totalMaterialCost"`
	Tool          float64 `json:"totalToolCost"`
	Transport     float64 `json:"totalTransportCost"`
	Warranty      float64 `json:"totalWarrantyCost"`
	Certification float64 `json:"totalCertificationCost"`
	GrandTotal    float64 `json:"grandTotal"`
}

// Get returns the total for one category.
func (t CostTotals) Get(c CostCategory) float64 {
	switch c {
	case CategoryManpower:
		return t.Manpower
	case CategoryMaterial:
		return t.Material
	case CategoryTool:
		return t.Tool
	case CategoryTransport:
		return t.Transport
	case CategoryWarranty:
		return t.Warranty
	case CategoryCertification:
		return t.Certification
	}
	return 0
}

// categories returns the six category totals in display order.
func (t CostTotals) categories() []float64 {
	return []float64{t.Manpower, t.Material, t.Tool, t.Transport, t.Warranty, t.Certification}
}

func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// Balanced reports whether GrandTotal equals the sum of the category totals to the cent.
func (t CostTotals) Balanced() bool {
	sum := decimal.Zero
	for _, v := range t.categories() {
		sum = sum.Add(cents(v))
	}
	return sum.Equal(cents(t.GrandTotal))
}

// Equal compares two sets of totals field by field to the cent.
func (t CostTotals) Equal(o CostTotals) bool {
	a, b := t.categories(), o.categories()
	for i := range a {
		if !cents(a[i]).Equal(cents(b[i])) {
			return false
		}
	}
	return cents(t.GrandTotal).Equal(cents(o.GrandTotal))
}

// Columns maps the totals onto quotation column names for a single UPDATE.
func (t CostTotals) Columns() map[string]interface{} {
	return map[string]interface{}{
		"total_manpower_cost":      t.Manpower,
		"total_material_cost":      t.Material,
		"total_tool_cost":          t.Tool,
		"total_transport_cost":     t.Transport,
		"total_warranty_cost":      t.Warranty,
		"total_certification_cost": t.Certification,
		"grand_total":              t.GrandTotal,
	}
}
