package costbreakdown

import (
	"fmt"

	"erp-backend/internal/application/costs"
	"erp-backend/internal/domain"
	"erp-backend/internal/interfaces/handlers/common"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handlers struct {
	Engine *costs.Engine
}

// GET /api/v1/cost-breakdown?quotationId=
func (h *Handlers) Get(c *fiber.Ctx) error {
	b, err := h.breakdown(c)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Cost breakdown fetched successfully", b)
}

// GET /api/v1/cost-breakdown/export?quotationId=: .xlsx attachment
func (h *Handlers) Export(c *fiber.Ctx) error {
	b, err := h.breakdown(c)
	if err != nil {
		return common.WriteError(c, err)
	}
	buf, err := costs.ExportWorkbook(b)
	if err != nil {
		log.Error().Err(err).Str("quotation_code", b.QuotationCode).Msg("cost breakdown export failed")
		return common.WriteError(c, err)
	}
	name := b.QuotationCode
	if name == "" {
		name = b.QuotationID.String()
	}
	c.Attachment(fmt.Sprintf("%s-cost-breakdown.xlsx", name))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}

func (h *Handlers) breakdown(c *fiber.Ctx) (*costs.Breakdown, error) {
	raw := c.Query("quotationId")
	if raw == "" {
		return nil, fmt.Errorf("%w: quotationId is required", domain.ErrValidation)
	}
	id, err := domain.ParseQuotationID(raw)
	if err != nil {
		return nil, err
	}
	return h.Engine.Breakdown(c.Context(), id)
}
