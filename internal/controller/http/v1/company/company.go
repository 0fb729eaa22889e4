package company

import (
	"net/http"
	"reflect"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/repository/postgres/company"
)

type Controller struct {
	company Company
}

func NewController(company Company) *Controller {
	return &Controller{company}
}

func (uc Controller) GetInfo(c *web.Context) error {
	response, err := uc.company.GetInfo(c.Ctx)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) UpdateAll(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request company.UpdateRequest

	if err := c.BindFunc(&request, "Name"); err != nil {
		return c.RespondError(err)
	}

	request.ID = id

	if err := uc.company.UpdateAll(c.Ctx, request); err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   "ok!",
		"status": true,
	}, http.StatusOK)
}
