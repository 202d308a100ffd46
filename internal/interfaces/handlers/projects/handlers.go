package projects

import (
	projsvc "erp-backend/internal/application/projects"
	"erp-backend/internal/interfaces/handlers/common"
	"erp-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Service *projsvc.Service
}

// GET /api/v1/projects?companyId=&clientId=
func (h *Handlers) List(c *fiber.Ctx) error {
	var filter projsvc.ListFilter
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
	return response.Success(c, "Projects fetched successfully", out)
}

// GET /api/v1/projects/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := common.UintParam(c, "id")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Get(c.Context(), id)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Project fetched successfully", out)
}

// POST /api/v1/projects: manual project, budget editable
func (h *Handlers) Create(c *fiber.Ctx) error {
	var in projsvc.CreateProjectInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.Create(c.Context(), in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Created(c, "Project created successfully", out)
}

// PUT /api/v1/projects/:id/budget: 409 for budgets derived from a quotation
func (h *Handlers) SetBudget(c *fiber.Ctx) error {
	id, err := common.UintParam(c, "id")
	if err != nil {
		return common.BadRequest(c, err.Error())
	}
	var in projsvc.BudgetInput
	if err := common.ParseBody(c, &in, false); err != nil {
		return common.BadRequest(c, err.Error())
	}
	out, err := h.Service.SetBudget(c.Context(), id, in)
	if err != nil {
		return common.WriteError(c, err)
	}
	return response.Success(c, "Project budget updated successfully", out)
}
