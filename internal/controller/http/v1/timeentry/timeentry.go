package timeentry

import (
	"net/http"
	"reflect"

	"timeclock/backend/foundation/web"
	"timeclock/backend/internal/repository/postgres/timeentry"
)

type Controller struct {
	timeEntry TimeEntry
}

func NewController(timeEntry TimeEntry) *Controller {
	return &Controller{timeEntry}
}

func (uc Controller) GetList(c *web.Context) error {
	var filter timeentry.Filter

	if limit, ok := c.GetQueryFunc(reflect.Int, "limit").(*int); ok {
		filter.Limit = limit
	}
	if offset, ok := c.GetQueryFunc(reflect.Int, "offset").(*int); ok {
		filter.Offset = offset
	}
	if page, ok := c.GetQueryFunc(reflect.Int, "page").(*int); ok {
		filter.Page = page
	}
	if workerID, ok := c.GetQueryFunc(reflect.Int, "worker_id").(*int); ok {
		filter.WorkerID = workerID
	}
	if date, ok := c.GetQueryFunc(reflect.String, "date").(*string); ok {
		filter.Date = date
	}

	if err := c.ValidQuery(); err != nil {
		return c.RespondError(err)
	}

	list, count, err := uc.timeEntry.GetList(c.Ctx, filter)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   count,
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetDetailById(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	response, err := uc.timeEntry.GetById(c.Ctx, id)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}

// Correct supersedes an entry with fixed times. The original row is kept and
// flagged so the audit trail stays intact.
func (uc Controller) Correct(c *web.Context) error {
	id := c.GetParam(reflect.Int, "id").(int)

	if err := c.ValidParam(); err != nil {
		return c.RespondError(err)
	}

	var request timeentry.CorrectionRequest

	if err := c.BindFunc(&request, "ClockIn"); err != nil {
		return c.RespondError(err)
	}

	request.EntryID = id

	response, err := uc.timeEntry.Correct(c.Ctx, request)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":   response,
		"status": true,
	}, http.StatusOK)
}
