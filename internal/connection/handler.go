// AngelaMos | 2026
// handler.go

package connection

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/connections", func(r chi.Router) {
		r.Get("/{consumerNo}", h.ListConnections)
		r.Post("/{connID}/terminate", h.TerminateConnection)
		r.Delete("/{connID}", h.DeleteConnection)
	})
}

func (h *Handler) ListConnections(w http.ResponseWriter, r *http.Request) {
	consumerID, ok := pathID(w, r, "consumerNo")
	if !ok {
		return
	}

	conns, err := h.service.ListConnections(r.Context(), consumerID)
	if err != nil {
		core.ServiceError(w, err, "consumer")
		return
	}

	core.OK(w, ConnectionListResponse{
		Connections: ToConnectionResponseList(conns),
	})
}

func (h *Handler) TerminateConnection(w http.ResponseWriter, r *http.Request) {
	connID, ok := pathID(w, r, "connID")
	if !ok {
		return
	}

	conn, err := h.service.TerminateConnection(r.Context(), connID)
	if err != nil {
		core.ServiceError(w, err, "connection")
		return
	}

	core.OK(w, ToConnectionResponse(conn))
}

func (h *Handler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	connID, ok := pathID(w, r, "connID")
	if !ok {
		return
	}

	if err := h.service.DeleteConnection(r.Context(), connID); err != nil {
		core.ServiceError(w, err, "connection")
		return
	}

	core.NoContent(w)
}

func pathID(w http.ResponseWriter, r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil {
		core.BadRequest(w, key+" must be numeric")
		return 0, false
	}
	return id, true
}
