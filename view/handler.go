package view

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/flowview/engine"
	apperrors "github.com/kbukum/flowview/errors"
	"github.com/kbukum/flowview/execution"
	"github.com/kbukum/flowview/graph"
	"github.com/kbukum/flowview/logger"
	"github.com/kbukum/flowview/server"
)

// Executions is the page registry the handlers drive.
type Executions interface {
	Launch(ctx context.Context, g *graph.Graph) (*execution.Page, *engine.Execution, error)
	Mount(ctx context.Context, instanceID string, navState *graph.Graph) (*execution.Page, error)
	Unmount(instanceID string) error
	Get(instanceID string) (*execution.Page, error)
}

// Handler serves execution pages as JSON and HTML.
type Handler struct {
	executions Executions
	opts       Options
	log        *logger.Logger
}

// NewHandler creates the HTTP handlers.
func NewHandler(executions Executions, opts Options, log *logger.Logger) *Handler {
	return &Handler{executions: executions, opts: opts, log: log.WithComponent("view")}
}

// LaunchResponse is the body of POST /api/executions.
type LaunchResponse struct {
	Execution *engine.Execution `json:"execution"`
	View      Model             `json:"view"`
}

// ClickResponse is the body of a node click.
type ClickResponse struct {
	execution.ClickResult
	View Model `json:"view"`
}

// FieldsRequest is the body of PUT /api/executions/:id/form.
type FieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// Register mounts the routes. throttle guards the routes that reach the
// engine or may mount a page. Form routes only act on mounted pages.
func (h *Handler) Register(r gin.IRouter, throttle gin.HandlerFunc) {
	api := r.Group("/api/executions")
	api.POST("", throttle, h.launch)
	api.PUT("/:id", throttle, h.mount)
	api.GET("/:id", throttle, h.get)
	api.DELETE("/:id", h.unmount)
	api.POST("/:id/nodes/:nodeId/click", throttle, h.click)
	api.PUT("/:id/form", h.setFields)
	api.DELETE("/:id/form", h.cancelForm)
	api.POST("/:id/form/submit", throttle, h.submitForm)

	ui := r.Group("/executions")
	ui.GET("/:id", throttle, h.page)
	ui.POST("/:id/click/:nodeId", throttle, h.pageClick)
	ui.POST("/:id/form", throttle, h.pageSubmit)
	ui.POST("/:id/form/cancel", h.pageCancel)
}

func (h *Handler) model(p *execution.Page) Model {
	return Build(p.State(), h.opts)
}

// readGraph decodes an optional graph body. An empty body yields nil.
func readGraph(c *gin.Context, required bool) (*graph.Graph, error) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, apperrors.InvalidInput("body", err.Error())
	}
	if len(data) == 0 {
		if required {
			return nil, apperrors.MissingField("graph")
		}
		return nil, nil
	}
	g, err := graph.Decode(data)
	if err != nil {
		return nil, apperrors.InvalidInput("graph", err.Error())
	}
	return g, nil
}

func (h *Handler) launch(c *gin.Context) {
	g, err := readGraph(c, true)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	p, exec, err := h.executions.Launch(c.Request.Context(), g)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, LaunchResponse{Execution: exec, View: h.model(p)})
}

func (h *Handler) mount(c *gin.Context) {
	nav, err := readGraph(c, false)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	p, err := h.executions.Mount(c.Request.Context(), c.Param("id"), nav)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, h.model(p))
}

// pageFor returns the mounted page, mounting it from the store on first use.
func (h *Handler) pageFor(c *gin.Context) (*execution.Page, bool) {
	p, err := h.executions.Mount(c.Request.Context(), c.Param("id"), nil)
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return p, true
}

// mountedPage returns the page only if it is already mounted.
func (h *Handler) mountedPage(c *gin.Context) (*execution.Page, bool) {
	p, err := h.executions.Get(c.Param("id"))
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return p, true
}

func (h *Handler) get(c *gin.Context) {
	if p, ok := h.pageFor(c); ok {
		server.RespondOK(c, h.model(p))
	}
}

func (h *Handler) unmount(c *gin.Context) {
	if err := h.executions.Unmount(c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) click(c *gin.Context) {
	p, ok := h.pageFor(c)
	if !ok {
		return
	}
	res, err := p.Click(c.Request.Context(), c.Param("nodeId"))
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, ClickResponse{ClickResult: res, View: h.model(p)})
}

func (h *Handler) setFields(c *gin.Context) {
	p, ok := h.mountedPage(c)
	if !ok {
		return
	}
	var req FieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.InvalidInput("fields", err.Error()))
		return
	}
	if err := p.SetFields(req.Fields); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, p.Form())
}

func (h *Handler) cancelForm(c *gin.Context) {
	if p, ok := h.mountedPage(c); ok {
		p.CancelForm()
		server.RespondNoContent(c)
	}
}

func (h *Handler) submitForm(c *gin.Context) {
	p, ok := h.mountedPage(c)
	if !ok {
		return
	}
	err := p.SubmitForm(c.Request.Context())
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, h.model(p))
}

// --- HTML ---

func (h *Handler) page(c *gin.Context) {
	p, ok := h.pageFor(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := RenderHTML(c.Writer, h.model(p)); err != nil {
		h.log.Error("page render failed", logger.MergeWithError(
			logger.Fields(logger.FieldInstanceID, p.InstanceID()), err))
	}
}

func (h *Handler) back(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/executions/"+c.Param("id"))
}

func (h *Handler) pageClick(c *gin.Context) {
	p, ok := h.pageFor(c)
	if !ok {
		return
	}
	if _, err := p.Click(c.Request.Context(), c.Param("nodeId")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	h.back(c)
}

// pageSubmit stores the posted inputs and submits the form. A failed
// submit still redirects; the reopened page shows the error on the form.
// Posts for a page that is not mounted just redirect.
func (h *Handler) pageSubmit(c *gin.Context) {
	p, err := h.executions.Get(c.Param("id"))
	if err != nil {
		h.back(c)
		return
	}
	form := p.Form()
	if form == nil {
		h.back(c)
		return
	}
	values := make(map[string]string, len(form.Fields))
	for _, f := range form.Fields {
		if v, posted := c.GetPostForm(f.Name); posted {
			values[f.Name] = v
		}
	}
	if err := p.SetFields(values); err != nil {
		server.RespondWithError(c, err)
		return
	}
	_ = p.SubmitForm(c.Request.Context())
	h.back(c)
}

func (h *Handler) pageCancel(c *gin.Context) {
	if p, err := h.executions.Get(c.Param("id")); err == nil {
		p.CancelForm()
	}
	h.back(c)
}
