package quotations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"erp-backend/internal/application/approvals"
	"erp-backend/internal/application/costs"
	"erp-backend/internal/constants"
	"erp-backend/internal/domain"
	"erp-backend/internal/infrastructure/keylock"
	"erp-backend/internal/metrics"
	"erp-backend/internal/pkg/validation"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var transitionActions = map[domain.QuotationStatus]string{
	domain.StatusSubmitted: "submit",
	domain.StatusApproved:  "approve",
	domain.StatusRejected:  "reject",
}

// Service drives the quotation lifecycle: Draft -> Submitted -> Approved|Rejected.
// Conversion to a project lives in the projects package.
type Service struct {
	DB            *gorm.DB
	Locker        keylock.Locker
	ApproverRoles []string
}

type CreateQuotationInput struct {
	CompanyID   uint       `json:"companyId" validate:"required"`
	ClientID    uint       `json:"clientId" validate:"required"`
	ProjectName string     `json:"projectName" validate:"required"`
	ValidUntil  *time.Time `json:"validUntil"`
	CreatedBy   uint       `json:"createdBy" validate:"required"`
	Remarks     string     `json:"remarks"`
}

// UpdateQuotationInput edits header fields of a Draft. Totals, status, version and code are not editable.
type UpdateQuotationInput struct {
	CompanyID   *uint      `json:"companyId" validate:"omitempty,gt=0"`
	ClientID    *uint      `json:"clientId" validate:"omitempty,gt=0"`
	ProjectName *string    `json:"projectName" validate:"omitempty,min=1"`
	ValidUntil  *time.Time `json:"validUntil"`
	Remarks     *string    `json:"remarks"`
}

type ListFilter struct {
	Status    domain.QuotationStatus
	CompanyID uint
	ClientID  uint
}

// DecisionInput is the approver's identity and note for Approve and Reject.
type DecisionInput struct {
	ApproverID   uint   `json:"approverId" validate:"required"`
	ApproverRole string `json:"approverRole" validate:"required"`
	Remarks      string `json:"remarks"`
}

type CloneInput struct {
	ActorID   uint `json:"actorId" validate:"required"`
	CopyItems bool `json:"copyItems"`
	CopyTerms bool `json:"copyTerms"`
}

// Detail is a quotation with its lines and terms.
type Detail struct {
	domain.Quotation
	Items []domain.QuotationItem `json:"items"`
	Terms []domain.QuotationTerm `json:"terms"`
}

func (s *Service) Create(ctx context.Context, in CreateQuotationInput) (*domain.Quotation, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	q := domain.Quotation{
		CompanyID:   in.CompanyID,
		ClientID:    in.ClientID,
		ProjectName: strings.TrimSpace(in.ProjectName),
		Version:     1,
		Status:      domain.StatusDraft,
		ValidUntil:  in.ValidUntil,
		CreatedBy:   in.CreatedBy,
		Remarks:     in.Remarks,
		Revision:    1,
	}
	if err := s.DB.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, err
	}
	metrics.RecordTransition("create")
	log.Info().Str("quotation_code", *q.QuotationCode).Uint("created_by", q.CreatedBy).Msg("quotation created")
	return &q, nil
}

func (s *Service) Get(ctx context.Context, id domain.QuotationID) (*Detail, error) {
	db := s.DB.WithContext(ctx)
	q, err := costs.LoadQuotation(db, id)
	if err != nil {
		return nil, err
	}
	d := &Detail{Quotation: *q, Items: []domain.QuotationItem{}, Terms: []domain.QuotationTerm{}}
	if err := db.Where("quotation_id = ?", id).Order("id ASC").Find(&d.Items).Error; err != nil {
		return nil, err
	}
	if err := db.Where("quotation_id = ?", id).Order("sort_order ASC, id ASC").Find(&d.Terms).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// List returns quotations matching the filter, newest first.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Quotation, error) {
	query := s.DB.WithContext(ctx).Model(&domain.Quotation{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.CompanyID != 0 {
		query = query.Where("company_id = ?", f.CompanyID)
	}
	if f.ClientID != 0 {
		query = query.Where("client_id = ?", f.ClientID)
	}
	out := []domain.Quotation{}
	if err := query.Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) Update(ctx context.Context, id domain.QuotationID, in UpdateQuotationInput) (*domain.Quotation, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	cols := map[string]interface{}{}
	if in.CompanyID != nil {
		cols["company_id"] = *in.CompanyID
	}
	if in.ClientID != nil {
		cols["client_id"] = *in.ClientID
	}
	if in.ProjectName != nil {
		cols["project_name"] = strings.TrimSpace(*in.ProjectName)
	}
	if in.ValidUntil != nil {
		cols["valid_until"] = *in.ValidUntil
	}
	if in.Remarks != nil {
		cols["remarks"] = *in.Remarks
	}

	var out *domain.Quotation
	err := s.locked(ctx, id, func(tx *gorm.DB, q *domain.Quotation) error {
		if !q.Editable() {
			return fmt.Errorf("%w: quotation %s is %s", domain.ErrQuotationNotEditable, id, q.Status)
		}
		if err := q.Apply(tx, cols); err != nil {
			return err
		}
		fresh, err := costs.LoadQuotation(tx, id)
		out = fresh
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a Draft quotation with its items and terms.
func (s *Service) Delete(ctx context.Context, id domain.QuotationID) error {
	return s.locked(ctx, id, func(tx *gorm.DB, q *domain.Quotation) error {
		if !q.Editable() {
			return fmt.Errorf("%w: quotation %s is %s", domain.ErrQuotationNotEditable, id, q.Status)
		}
		var linked int64
		if err := tx.Model(&domain.Project{}).Where("quotation_id = ?", id).Count(&linked).Error; err != nil {
			return err
		}
		if linked > 0 {
			return fmt.Errorf("%w: quotation %s is referenced by a project", domain.ErrQuotationNotEditable, id)
		}
		if err := tx.Where("quotation_id = ?", id).Delete(&domain.QuotationItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("quotation_id = ?", id).Delete(&domain.QuotationTerm{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND revision = ?", id, q.Revision).Delete(&domain.Quotation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: quotation %s changed concurrently", domain.ErrConflictingWrite, id)
		}
		log.Info().Str("quotation_id", id.String()).Msg("quotation deleted")
		return nil
	})
}

// Submit moves a Draft to Submitted. Totals are not touched.
func (s *Service) Submit(ctx context.Context, id domain.QuotationID) (*domain.Quotation, error) {
	return s.transition(ctx, id, domain.StatusSubmitted, nil, nil)
}

// Approve moves a Submitted quotation to Approved and records the decision in the ledger.
func (s *Service) Approve(ctx context.Context, id domain.QuotationID, in DecisionInput) (*domain.Quotation, error) {
	return s.decide(ctx, id, domain.StatusApproved, domain.ActionApproved, in)
}

// Reject moves a Submitted quotation to Rejected and records the decision in the ledger.
func (s *Service) Reject(ctx context.Context, id domain.QuotationID, in DecisionInput) (*domain.Quotation, error) {
	return s.decide(ctx, id, domain.StatusRejected, domain.ActionRejected, in)
}

func (s *Service) decide(ctx context.Context, id domain.QuotationID, to domain.QuotationStatus, action domain.ApprovalAction, in DecisionInput) (*domain.Quotation, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !s.mayDecide(action, in.ApproverRole) {
		return nil, fmt.Errorf("%w: %q", domain.ErrApproverNotAllowed, in.ApproverRole)
	}
	now := time.Now().UTC()
	cols := map[string]interface{}{
		"approved_by": in.ApproverID,
		"approved_at": now,
		"remarks":     in.Remarks,
	}
	return s.transition(ctx, id, to, cols, func(tx *gorm.DB, q *domain.Quotation) error {
		return approvals.Record(tx, &domain.QuotationApproval{
			QuotationID:  q.ID,
			Version:      q.Version,
			ApproverID:   in.ApproverID,
			ApproverRole: in.ApproverRole,
			Action:       action,
			Remarks:      in.Remarks,
			ActionAt:     now,
		})
	})
}

// transition applies a status change plus extra columns and runs after (if any) in the same transaction.
func (s *Service) transition(ctx context.Context, id domain.QuotationID, to domain.QuotationStatus, extra map[string]interface{}, after func(tx *gorm.DB, q *domain.Quotation) error) (*domain.Quotation, error) {
	var out *domain.Quotation
	err := s.locked(ctx, id, func(tx *gorm.DB, q *domain.Quotation) error {
		from := q.Status
		if !domain.CanTransition(from, to) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
		}
		cols := map[string]interface{}{"status": to}
		for k, v := range extra {
			cols[k] = v
		}
		if err := q.Apply(tx, cols); err != nil {
			return err
		}
		if after != nil {
			if err := after(tx, q); err != nil {
				return err
			}
		}
		fresh, err := costs.LoadQuotation(tx, id)
		if err != nil {
			return err
		}
		out = fresh
		log.Info().Str("quotation_code", *fresh.QuotationCode).Str("from", string(from)).Str("to", string(to)).Msg("quotation status changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition(transitionActions[to])
	return out, nil
}

// Clone starts a new Draft version from a quotation that has not been converted. Items and terms are
// copied only when asked; totals of the clone are recomputed from the items it ends up with.
func (s *Service) Clone(ctx context.Context, id domain.QuotationID, in CloneInput) (*Detail, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	var cloneID domain.QuotationID
	err := s.locked(ctx, id, func(tx *gorm.DB, src *domain.Quotation) error {
		if src.Status == domain.StatusConverted {
			return fmt.Errorf("%w: quotation %s is Converted and cannot be cloned", domain.ErrInvalidTransition, id)
		}
		clone := domain.Quotation{
			CompanyID:   src.CompanyID,
			ClientID:    src.ClientID,
			ProjectName: src.ProjectName,
			Version:     src.Version + 1,
			Status:      domain.StatusDraft,
			ValidUntil:  src.ValidUntil,
			CreatedBy:   in.ActorID,
			Revision:    1,
		}
		if err := tx.Create(&clone).Error; err != nil {
			return err
		}
		if in.CopyItems {
			var items []domain.QuotationItem
			if err := tx.Where("quotation_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
				return err
			}
			for _, it := range items {
				it.ID = 0
				it.QuotationID = clone.ID
				it.CreatedAt, it.UpdatedAt = time.Time{}, time.Time{}
				it.TotalAmount = costs.LineAmount(it.Quantity, it.UnitRate)
				if err := tx.Create(&it).Error; err != nil {
					return err
				}
			}
		}
		if in.CopyTerms {
			var terms []domain.QuotationTerm
			if err := tx.Where("quotation_id = ?", id).Order("sort_order ASC, id ASC").Find(&terms).Error; err != nil {
				return err
			}
			for _, term := range terms {
				term.ID = 0
				term.QuotationID = clone.ID
				term.CreatedAt, term.UpdatedAt = time.Time{}, time.Time{}
				if err := tx.Create(&term).Error; err != nil {
					return err
				}
			}
		}
		if _, err := costs.Recompute(tx, &clone); err != nil {
			return err
		}
		cloneID = clone.ID
		log.Info().Str("source_id", id.String()).Str("quotation_code", *clone.QuotationCode).Int("version", clone.Version).Msg("quotation cloned")
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordTransition("clone")
	return s.Get(ctx, cloneID)
}

// mayDecide checks role against the configured approver roles, or the default permission table
// when none are configured.
func (s *Service) mayDecide(action domain.ApprovalAction, role string) bool {
	if len(s.ApproverRoles) > 0 {
		return constants.HasRole(s.ApproverRoles, role)
	}
	permission := constants.ApproveQuotation
	if action == domain.ActionRejected {
		permission = constants.RejectQuotation
	}
	return constants.AllowedRole(permission, role)
}

// locked loads the quotation under its lock and runs fn in one transaction.
func (s *Service) locked(ctx context.Context, id domain.QuotationID, fn func(tx *gorm.DB, q *domain.Quotation) error) error {
	return keylock.With(ctx, s.Locker, id.LockKey(), func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			q, err := costs.LoadQuotation(tx, id)
			if err != nil {
				return err
			}
			return fn(tx, q)
		})
	})
}
