package web

import (
	"context"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var validate = validator.New()

// Context carries the request scoped values through the handler chain.
type Context struct {
	*gin.Context
	Ctx       context.Context
	RequestID string

	paramErr error
	queryErr error
}

// Respond converts a Go value to JSON and sends it to the client.
func (c *Context) Respond(data interface{}, status int) error {
	c.JSON(status, data)
	return nil
}

// RespondError sends an error response back to the client. Expected errors
// carry their own status, everything else is treated as internal.
func (c *Context) RespondError(err error) error {
	if webErr, ok := IsRequestError(err); ok {
		c.JSON(webErr.Status, map[string]interface{}{
			"status": false,
			"error":  webErr.Err.Error(),
		})
		return nil
	}

	c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"status": false,
		"error":  "internal error",
	})
	return nil
}

// RespondString sends a raw body with the given content type. Used by the
// webhook handlers that must answer in a provider specific format.
func (c *Context) RespondString(status int, contentType, body string) error {
	c.Data(status, contentType, []byte(body))
	return nil
}

// BindFunc binds the request body into data and validates the listed struct
// fields as required.
func (c *Context) BindFunc(data interface{}, requiredFields ...string) error {
	if err := c.ShouldBind(data); err != nil {
		return NewRequestError(errors.Wrap(err, "binding request"), http.StatusBadRequest)
	}

	if len(requiredFields) > 0 {
		if err := validate.StructPartial(data, requiredFields...); err != nil {
			return NewRequestError(errors.Wrap(err, "validating request"), http.StatusBadRequest)
		}
	}

	return nil
}

// GetParam parses a path parameter into the requested kind.
func (c *Context) GetParam(kind reflect.Kind, name string) interface{} {
	value := c.Param(name)

	switch kind {
	case reflect.Int:
		v, err := strconv.Atoi(value)
		if err != nil {
			c.paramErr = NewRequestError(errors.Errorf("parsing param %q", name), http.StatusBadRequest)
			return 0
		}
		return v
	default:
		return value
	}
}

// GetQueryFunc parses an optional query parameter into a pointer of the
// requested kind. Missing parameters return a typed nil.
func (c *Context) GetQueryFunc(kind reflect.Kind, name string) interface{} {
	value, ok := c.GetQuery(name)

	switch kind {
	case reflect.Int:
		if !ok {
			return (*int)(nil)
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			c.queryErr = NewRequestError(errors.Errorf("parsing query %q", name), http.StatusBadRequest)
			return (*int)(nil)
		}
		return &v
	case reflect.Bool:
		if !ok {
			return (*bool)(nil)
		}
		v, err := strconv.ParseBool(value)
		if err != nil {
			c.queryErr = NewRequestError(errors.Errorf("parsing query %q", name), http.StatusBadRequest)
			return (*bool)(nil)
		}
		return &v
	default:
		if !ok {
			return (*string)(nil)
		}
		return &value
	}
}

// ValidParam reports a parse error collected by GetParam.
func (c *Context) ValidParam() error {
	return c.paramErr
}

// ValidQuery reports a parse error collected by GetQueryFunc.
func (c *Context) ValidQuery() error {
	return c.queryErr
}
