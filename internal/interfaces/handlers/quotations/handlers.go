package quotations

import (
	"context"

	"erp-backend/internal/application/approvals"
	projsvc "erp-backend/internal/application/projects"
	quotesvc "erp-backend/internal/application/quotations"
	"erp-backend/internal/domain"
	"erp-backend/internal/interfaces/handlers/common"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service  *quotesvc.Service
	Projects *projsvc.Service
	Ledger   *approvals.Ledger
}

// GET /api/v1/quotations?status=&companyId=&clientId=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter quotesvc.ListFilter
	if raw := c.Query("status"); raw != "" {
		st, err := domain.ParseQuotationStatus(raw)
		if err != nil {
			return common.WriteError(c, err)
		}
		filter.Status = st
	}
	var err error
	if filter.CompanyID, err = common.UintQuery(c, "companyId"); err != nil {
		return common.BadRequest(c, err.Error())
	}
	if filter.ClientID, err = common.UintQuery(c, "clientId"); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.List(c.Context(), filter)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotations fetched successfully", out)
}

// GET /api/v1/quotations/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	out, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation fetched successfully", out)
}

// POST /api/v1/quotations: 201
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in quotesvc.CreateQuotationInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Quotation created successfully", out)
}

// PUT /api/v1/quotations/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in quotesvc.UpdateQuotationInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Update(c.Context(), id, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation updated successfully", out)
}

// DELETE /api/v1/quotations/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	if err := h.Service.Delete(c.Context(), id); err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation deleted successfully", nil)
}

// POST /api/v1/quotations/:id/clone: 201 with the new Draft version
func (h *Handlers) Clone(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in quotesvc.CloneInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Clone(c.Context(), id, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Quotation cloned successfully", out)
}

// POST /api/v1/quotations/:id/submit
func (h *Handlers) Submit(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	out, err := h.Service.Submit(c.Context(), id)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation submitted successfully", out)
}

// POST /api/v1/quotations/:id/approve
func (h *Handlers) Approve(c *fiber.Ctx) error {
	return h.decide(c, h.Service.Approve, "Quotation approved successfully")
}

// POST /api/v1/quotations/:id/reject
func (h *Handlers) Reject(c *fiber.Ctx) error {
	return h.decide(c, h.Service.Reject, "Quotation rejected successfully")
}

func (h *Handlers) decide(c *fiber.Ctx, fn func(context.Context, domain.QuotationID, quotesvc.DecisionInput) (*domain.Quotation, error), message string) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in quotesvc.DecisionInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := fn(c.Context(), id, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, message, out)
}

// POST /api/v1/quotations/:id/convert: 201 with the created project
func (h *Handlers) Convert(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in projsvc.ConvertInput
	if err := common.ParseBody(c, &in, true); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Projects.Convert(c.Context(), id, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Quotation converted to project successfully", out)
}

// GET /api/v1/quotations/:id/approvals: newest decision first
func (h *Handlers) Approvals(c *fiber.Ctx) error {
	id, err := common.QuotationID(c, "id")
	if err != nil {
		return common.WriteError(c, err)
	}
	out, err := h.Ledger.History(c.Context(), id)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Approval history fetched successfully", out)
}
