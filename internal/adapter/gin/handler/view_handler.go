package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "user-view/internal/domain/user"
	"user-view/internal/ui/userview"
	pkgerrors "user-view/pkg/errors"
	"user-view/pkg/logger"
)

// ViewHandler mounts a UserView per request and serves its renders.
type ViewHandler struct {
	loader userview.Loader
	log    *zap.Logger
}

// NewViewHandler creates a new ViewHandler instance
func NewViewHandler(loader userview.Loader, log *zap.Logger) *ViewHandler {
	return &ViewHandler{
		loader: loader,
		log:    log,
	}
}

// StateResponse is a JSON snapshot of one view state
type StateResponse struct {
	MountID string       `json:"mount_id"`
	State   string       `json:"state"`
	Lines   []string     `json:"lines"`
	User    *domain.User `json:"user,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NotFound answers routes the preview host does not serve.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: c.Request.Method + " " + c.Request.URL.Path,
	})
}

// GetUser handles GET /v1/user and responds with the settled render as text.
func (h *ViewHandler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	view := userview.Mount(ctx, h.loader, h.log)
	defer view.Unmount()

	s, err := view.Wait(ctx)
	if err != nil {
		h.clientGone(c, view, err)
		return
	}

	c.Data(statusFor(s), "text/plain; charset=utf-8", []byte(userview.Text(s)+"\n"))
}

// GetState handles GET /v1/user/state and responds with a JSON snapshot of the settled state.
func (h *ViewHandler) GetState(c *gin.Context) {
	ctx := c.Request.Context()
	view := userview.Mount(ctx, h.loader, h.log)
	defer view.Unmount()

	s, err := view.Wait(ctx)
	if err != nil {
		h.clientGone(c, view, err)
		return
	}

	c.JSON(statusFor(s), snapshot(view.ID(), s))
}

// StreamUser handles GET /v1/user/stream. Every frame the view goes through
// is sent as a "state" server-sent event.
func (h *ViewHandler) StreamUser(c *gin.Context) {
	ctx := c.Request.Context()
	view := userview.Mount(ctx, h.loader, h.log)
	defer view.Unmount()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	updates := view.Updates()
	for {
		select {
		case <-ctx.Done():
			h.clientGone(c, view, ctx.Err())
			return
		case s, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("state", snapshot(view.ID(), s))
			c.Writer.Flush()
		}
	}
}

func (h *ViewHandler) clientGone(c *gin.Context, view *userview.Instance, err error) {
	logger.WithContext(c.Request.Context(), h.log).Debug("client went away before the view settled",
		zap.String("mount_id", view.ID()),
		zap.Error(err),
	)
	c.Abort()
}

// statusFor maps a settled state to a response status.
func statusFor(s userview.State) int {
	failed, ok := s.(userview.Failed)
	if !ok {
		return http.StatusOK
	}
	return pkgerrors.HTTPStatus(failed.Reason)
}

func snapshot(mountID string, s userview.State) StateResponse {
	resp := StateResponse{
		MountID: mountID,
		State:   string(s.Kind()),
		Lines:   userview.Lines(s),
	}
	switch st := s.(type) {
	case userview.Loaded:
		resp.User = st.User
	case userview.Failed:
		if st.Reason != nil {
			resp.Error = st.Reason.Error()
		}
	}
	return resp
}
