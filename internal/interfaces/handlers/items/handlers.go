package items

import (
	itemsvc "erp-backend/internal/application/items"
	"erp-backend/internal/interfaces/handlers/common"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers serves /api/v1/quotations/:qid/items.
type Handlers struct {
	Service *itemsvc.Service
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
	return response.Success(c, "Quotation items fetched successfully", out)
}

func (h *Handlers) Get(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	itemID, err := common.UintParam(c, "itemId")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Get(c.Context(), qid, itemID)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation item fetched successfully", out)
}

// Create adds an item; the response carries the derived totalAmount.
func (h *Handlers) Create(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	var in itemsvc.CreateItemInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Create(c.Context(), qid, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Quotation item created successfully", out)
}

func (h *Handlers) Update(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	itemID, err := common.UintParam(c, "itemId")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	var in itemsvc.UpdateItemInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Update(c.Context(), qid, itemID, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation item updated successfully", out)
}

func (h *Handlers) Delete(c *fiber.Ctx) error {
	qid, err := common.QuotationID(c, "qid")
	if err != nil {
		return common.WriteError(c, err)
	}
	itemID, err := common.UintParam(c, "itemId")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	if err := h.Service.Delete(c.Context(), qid, itemID); err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Quotation item deleted successfully", nil)
}
