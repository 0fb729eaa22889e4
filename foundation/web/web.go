package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handler is the signature used by all application handlers in this service.
type Handler func(c *Context) error

// Middleware is a function designed to run some code before and/or after
// another Handler.
type Middleware func(Handler) Handler

// App is the entrypoint into our application and what configures our context
// object for each of our http handlers.
type App struct {
	*gin.Engine
}

func NewApp() *App {
	gin.SetMode(gin.ReleaseMode)
	return &App{Engine: gin.New()}
}

// wrapMiddleware creates a new handler by wrapping middleware around a final
// handler. The middlewares' Handlers will be executed by requests in the order
// they are provided.
func wrapMiddleware(mw []Middleware, handler Handler) Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		h := mw[i]
		if h != nil {
			handler = h(handler)
		}
	}
	return handler
}

func (a *App) handle(method string, path string, handler Handler, mw ...Middleware) {
	handler = wrapMiddleware(mw, handler)

	a.Engine.Handle(method, path, func(c *gin.Context) {
		ctx := &Context{
			Context:   c,
			Ctx:       c.Request.Context(),
			RequestID: uuid.NewString(),
		}

		if err := handler(ctx); err != nil {
			logrus.WithError(err).WithField("request_id", ctx.RequestID).Error("handler error")
			c.JSON(http.StatusInternalServerError, map[string]interface{}{
				"status": false,
				"error":  "internal error",
			})
		}
	})
}

func (a *App) Get(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodGet, path, handler, mw...)
}

func (a *App) Post(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPost, path, handler, mw...)
}

func (a *App) Put(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPut, path, handler, mw...)
}

func (a *App) Patch(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodPatch, path, handler, mw...)
}

func (a *App) Delete(path string, handler Handler, mw ...Middleware) {
	a.handle(http.MethodDelete, path, handler, mw...)
}
