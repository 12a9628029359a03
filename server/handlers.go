package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/kvbridge/bridge"
	apperrors "github.com/kbukum/kvbridge/errors"
	"github.com/kbukum/kvbridge/resolve"
)

// VarsField names the request body member holding template variables. It
// is removed from the options bag before the operation runs.
const VarsField = "vars"

// BridgeHandler serves the four bridge operations over HTTP. Each endpoint
// takes a JSON object used as the options bag and an optional "vars"
// object whose members feed {{ expr }} templates in option values.
type BridgeHandler struct {
	bridge *bridge.Bridge
}

// NewBridgeHandler creates handlers bound to b.
func NewBridgeHandler(b *bridge.Bridge) *BridgeHandler {
	return &BridgeHandler{bridge: b}
}

// Register mounts the handlers under /v1.
func (h *BridgeHandler) Register(r gin.IRouter) {
	v1 := r.Group("/v1")
	v1.POST("/query", h.Query)
	v1.POST("/ping", h.Ping)
	v1.POST("/insert", h.Insert)
	v1.POST("/log-insert", h.LogInsert)
}

// Query answers {"data": value}; a missing key yields {"data": null}.
func (h *BridgeHandler) Query(c *gin.Context) {
	res, opts, err := bindOptions(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	value, err := h.bridge.Query(c.Request.Context(), res, opts)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, value)
}

// Ping answers {"data": "PONG"}.
func (h *BridgeHandler) Ping(c *gin.Context) {
	res, opts, err := bindOptions(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	reply, err := h.bridge.Ping(c.Request.Context(), res, opts)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	RespondOK(c, reply)
}

// Insert answers 204 on success.
func (h *BridgeHandler) Insert(c *gin.Context) {
	res, opts, err := bindOptions(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := h.bridge.Insert(c.Request.Context(), res, opts); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

// LogInsert answers 204 on success.
func (h *BridgeHandler) LogInsert(c *gin.Context) {
	res, opts, err := bindOptions(c)
	if err != nil {
		RespondWithError(c, err)
		return
	}
	if err := h.bridge.LogInsert(c.Request.Context(), res, opts); err != nil {
		RespondWithError(c, err)
		return
	}
	RespondNoContent(c)
}

// bindOptions decodes the request body into an options bag and builds the
// resolver from its "vars" member. An empty body is an empty bag.
func bindOptions(c *gin.Context) (resolve.Resolver, bridge.Options, error) {
	body := map[string]any{}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, nil, apperrors.PayloadTooLarge(tooLarge.Limit)
			}
			return nil, nil, apperrors.InvalidFormat("body", "JSON object").WithCause(err)
		}
	}

	opts := bridge.Options(body)
	raw, ok := opts[VarsField]
	if !ok {
		return resolve.Identity, opts, nil
	}
	delete(opts, VarsField)

	if raw == nil {
		return resolve.Identity, opts, nil
	}
	vars, ok := raw.(map[string]any)
	if !ok {
		return nil, nil, apperrors.InvalidFormat(VarsField, "JSON object")
	}
	return resolve.NewTemplate(vars), opts, nil
}
