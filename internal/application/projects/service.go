package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"erp-backend/internal/application/costs"
	"erp-backend/internal/domain"
	"erp-backend/internal/infrastructure/keylock"
	"erp-backend/internal/metrics"
	"erp-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service owns projects and the one-way conversion of an approved quotation into a project.
type Service struct {
	DB     *gorm.DB
	Locker keylock.Locker
}

// ConvertInput overrides project fields that otherwise default from the quotation.
type ConvertInput struct {
	Name      string     `json:"name"`
	CompanyID uint       `json:"companyId"`
	ClientID  uint       `json:"clientId"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
	Remarks   string     `json:"remarks"`
}

type BudgetInput struct {
	Labor         float64 `json:"labor" validate:"gte=0"`
	Materials     float64 `json:"materials" validate:"gte=0"`
	Tools         float64 `json:"tools" validate:"gte=0"`
	Transport     float64 `json:"transport" validate:"gte=0"`
	Warranty      float64 `json:"warranty" validate:"gte=0"`
	Certification float64 `json:"certification" validate:"gte=0"`
}

// CreateProjectInput is a project entered by hand, not derived from a quotation.
type CreateProjectInput struct {
	Name      string      `json:"name" validate:"required"`
	CompanyID uint        `json:"companyId" validate:"required"`
	ClientID  uint        `json:"clientId" validate:"required"`
	Budget    BudgetInput `json:"budget"`
	StartDate *time.Time  `json:"startDate"`
	EndDate   *time.Time  `json:"endDate"`
	Remarks   string      `json:"remarks"`
}

type ListFilter struct {
	CompanyID uint
	ClientID  uint
}

// Convert turns an Approved quotation into a project exactly once. The project budget is copied
// from the quotation totals and the quotation becomes Converted in the same transaction.
func (s *Service) Convert(ctx context.Context, qid domain.QuotationID, in ConvertInput) (*domain.Project, error) {
	var project *domain.Project
	err := keylock.With(ctx, s.Locker, qid.LockKey(), func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q, err := costs.LoadQuotation(tx, qid)
			if err != nil {
				return err
			}
			if q.Status == domain.StatusConverted {
				return fmt.Errorf("%w: quotation %s", domain.ErrAlreadyConverted, qid)
			}
			var linked int64
			if err := tx.Model(&domain.Project{}).Where("quotation_id = ?", qid).Count(&linked).Error; err != nil {
				return err
			}
			if linked > 0 {
				return fmt.Errorf("%w: quotation %s", domain.ErrAlreadyConverted, qid)
			}
			if q.Status != domain.StatusApproved {
				return fmt.Errorf("%w: quotation %s is %s, must be Approved", domain.ErrInvalidTransition, qid, q.Status)
			}

			p := newProjectFromQuotation(q, in)
			if err := tx.Create(p).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return fmt.Errorf("%w: quotation %s", domain.ErrAlreadyConverted, qid)
				}
				return err
			}

			res := tx.Model(&domain.Quotation{}).
				Where("id = ? AND status = ? AND revision = ?", qid, domain.StatusApproved, q.Revision).
				Updates(map[string]interface{}{
					"status":     domain.StatusConverted,
					"project_id": p.ID,
					"revision":   q.Revision + 1,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: quotation %s", domain.ErrAlreadyConverted, qid)
			}
			project = p
			return nil
		})
	})
	switch {
	case err == nil:
		metrics.RecordConversion("created")
		metrics.RecordTransition("convert")
		log.Info().Str("quotation_id", qid.String()).Str("project_code", *project.ProjectCode).
			Float64("labor", project.Budget.Labor).Float64("materials", project.Budget.Materials).Msg("quotation converted to project")
		return project, nil
	case errors.Is(err, domain.ErrAlreadyConverted):
		metrics.RecordConversion("already_converted")
	case errors.Is(err, domain.ErrInvalidTransition):
		metrics.RecordConversion("rejected")
	}
	return nil, err
}

func newProjectFromQuotation(q *domain.Quotation, in ConvertInput) *domain.Project {
	qid := q.ID
	p := &domain.Project{
		Name:        strings.TrimSpace(in.Name),
		CompanyID:   in.CompanyID,
		ClientID:    in.ClientID,
		QuotationID: &qid,
		Budget:      domain.BudgetFromTotals(q.Totals()),
		Status:      domain.ProjectStatusPlanned,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Remarks:     in.Remarks,
	}
	if p.Name == "" {
		p.Name = q.ProjectName
	}
	if p.CompanyID == 0 {
		p.CompanyID = q.CompanyID
	}
	if p.ClientID == 0 {
		p.ClientID = q.ClientID
	}
	return p
}

// Create records a project that did not come from a quotation; its budget stays editable.
func (s *Service) Create(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	p := domain.Project{
		Name:      strings.TrimSpace(in.Name),
		CompanyID: in.CompanyID,
		ClientID:  in.ClientID,
		Budget:    domain.ProjectBudget(in.Budget),
		Status:    domain.ProjectStatusPlanned,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Remarks:   in.Remarks,
	}
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*domain.Project, error) {
	var p domain.Project
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Project, error) {
	query := s.DB.WithContext(ctx).Model(&domain.Project{})
	if f.CompanyID != 0 {
		query = query.Where("company_id = ?", f.CompanyID)
	}
	if f.ClientID != 0 {
		query = query.Where("client_id = ?", f.ClientID)
	}
	out := []domain.Project{}
	if err := query.Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// SetBudget replaces the budget of a manual project. Budgets derived from a quotation are locked.
func (s *Service) SetBudget(ctx context.Context, id uint, in BudgetInput) (*domain.Project, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var out *domain.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Project
		if err := tx.Where("id = ?", id).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProjectNotFound
			}
			return err
		}
		if p.BudgetLocked() {
			return fmt.Errorf("%w: project %d derives its budget from quotation %s", domain.ErrBudgetLocked, p.ID, *p.QuotationID)
		}
		res := tx.Model(&domain.Project{}).Where("id = ? AND quotation_id IS NULL", id).Updates(map[string]interface{}{
			"budget_labor":         in.Labor,
			"budget_materials":     in.Materials,
			"budget_tools":         in.Tools,
			"budget_transport":     in.Transport,
			"budget_warranty":      in.Warranty,
			"budget_certification": in.Certification,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrBudgetLocked
		}
		p.Budget = domain.ProjectBudget(in)
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
