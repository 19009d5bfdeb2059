// AngelaMos | 2026
// handler.go

package complaint

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/complaints", func(r chi.Router) {
		r.Post("/", h.AddComplaint)
		r.Get("/{consumerNo}", h.ListComplaints)
		r.Delete("/{complaintID}", h.DeleteComplaint)
	})
}

func (h *Handler) AddComplaint(w http.ResponseWriter, r *http.Request) {
	var req AddComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	consumerNo, err := req.ConsumerNo.Int64()
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	c, err := h.service.AddComplaint(r.Context(), consumerNo, req.Title, req.Description)
	if err != nil {
		core.ServiceError(w, err, "consumer")
		return
	}

	core.Created(w, ToComplaintResponse(c))
}

func (h *Handler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	consumerNo, err := strconv.ParseInt(chi.URLParam(r, "consumerNo"), 10, 64)
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	complaints, err := h.service.ListComplaints(r.Context(), consumerNo)
	if err != nil {
		core.ServiceError(w, err, "consumer")
		return
	}

	core.OK(w, ToComplaintListResponse(complaints))
}

func (h *Handler) DeleteComplaint(w http.ResponseWriter, r *http.Request) {
	complaintID, err := strconv.ParseInt(chi.URLParam(r, "complaintID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "complaintID must be numeric")
		return
	}

	if err := h.service.DeleteComplaint(r.Context(), complaintID); err != nil {
		core.ServiceError(w, err, "complaint")
		return
	}

	core.NoContent(w)
}
