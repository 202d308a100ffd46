package terms

import (
	termsvc "erp-backend/internal/application/terms"
	"erp-backend/internal/interfaces/handlers/common"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/quotations/:qid/terms.
type Handlers struct {
	Service *termsvc.Service
}

func (h *Handlers) List(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	out, err := h.Service.List(c.Context(), qid)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation terms fetched successfully", out)
}

func (h *Handlers) Create(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in termsvc.CreateTermInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Create(c.Context(), qid, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Quotation term created successfully", out)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	termID, err := common.UintParam(c, "termId")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	var in termsvc.UpdateTermInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Update(c.Context(), qid, termID, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation term updated successfully", out)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	termID, err := common.UintParam(c, "termId")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	if err := h.Service.Delete(c.Context(), qid, termID); err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation term deleted successfully", nil)
}
