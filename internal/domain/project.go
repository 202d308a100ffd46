package domain

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const ProjectStatusPlanned = "Planned"

// ProjectBudget holds the per-category budget of a project.
type ProjectBudget struct {
	Labor         float64 `gorm:"column:labor;type:decimal(18,2);not null;default:0" json:"labor"`
	Materials     float64 `gorm:"column:materials;type:decimal(18,2);not null;default:0" json:"materials"`
	Tools         float64 `gorm:"column:tools;type:decimal(18,2);not null;default:0" json:"tools"`
	Transport     float64 `gorm:"column:transport;type:decimal(18,2);not null;default:0" json:"transport"`
	Warranty      float64 `gorm:"column:warranty;type:decimal(18,2);not null;default:0" json:"warranty"`
	Certification float64 `gorm:"column:certification;type:decimal(18,2);not null;default:0" json:"certification"`
}

// BudgetFromTotals copies quotation totals verbatim into project budget fields.
func BudgetFromTotals(t CostTotals) ProjectBudget {
	return ProjectBudget{
		Labor:         t.Manpower,
		Materials:     t.Material,
		Tools:         t.Tool,
		Transport:     t.Transport,
		Warranty:      t.Warranty,
		Certification: t.Certification,
	}
}

// Project is the billable record a quotation converts into.
// QuotationID is unique: at most one project per quotation.
type Project struct {
	ID          uint          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProjectCode *string       `gorm:"column:project_code;type:varchar(32);uniqueIndex" json:"projectCode"`
	Name        string        `gorm:"column:name;not null" json:"name"`
	CompanyID   uint          `gorm:"column:company_id;not null;index" json:"companyId"`
	ClientID    uint          `gorm:"column:client_id;not null;index" json:"clientId"`
	QuotationID *QuotationID  `gorm:"column:quotation_id;uniqueIndex" json:"quotationId"`
	Budget      ProjectBudget `gorm:"embedded;embeddedPrefix:budget_" json:"budget"`
	Status      string        `gorm:"column:status;type:varchar(20);not null;default:'Planned'" json:"status"`
	StartDate   *time.Time    `gorm:"column:start_date" json:"startDate"`
	EndDate     *time.Time    `gorm:"column:end_date" json:"endDate"`
	Remarks     string        `gorm:"column:remarks;type:text" json:"remarks"`
	CreatedAt   time.Time     `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt   time.Time     `gorm:"column:updated_at" json:"updatedAt"`
}

func (Project) TableName() string {
	return "projects"
}

// BudgetLocked is true for projects derived from a quotation.
func (p *Project) BudgetLocked() bool {
	return p.QuotationID != nil
}

// AfterCreate assigns PRJ-### from the database-issued id, inside the insert transaction.
func (p *Project) AfterCreate(tx *gorm.DB) error {
	if p.ProjectCode != nil {
		return nil
	}
	code := fmt.Sprintf("PRJ-%03d", p.ID)
	if err := tx.Model(p).UpdateColumn("project_code", code).Error; err != nil {
		return err
	}
	p.ProjectCode = &code
	return nil
}
