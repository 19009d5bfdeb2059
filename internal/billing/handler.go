// AngelaMos | 2026
// handler.go

package billing

import (
	"encoding/json"
	"net/http"

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
	r.Post("/calculate-bill", h.CalculateBill)
	r.Post("/reading-history", h.ReadingHistory)
	r.Post("/pay-bill", h.PayBill)
	r.Post("/bills", h.IssueBill)
}

func (h *Handler) CalculateBill(w http.ResponseWriter, r *http.Request) {
	var req CalculateBillRequest
	if !h.decode(w, r, &req) {
		return
	}

	consumerID, err := req.ConsumerNo.Int64()
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	bill, err := h.service.GetCurrentBill(r.Context(), consumerID)
	if err != nil {
		core.ServiceError(w, err, "bill")
		return
	}

	core.OK(w, ToBillResponse(bill))
}

func (h *Handler) ReadingHistory(w http.ResponseWriter, r *http.Request) {
	var req ReadingHistoryRequest
	if !h.decode(w, r, &req) {
		return
	}

	consumerID, err := req.ConsumerNo.Int64()
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	entries, err := h.service.GetReadingHistory(r.Context(), consumerID, req.Limit)
	if err != nil {
		core.ServiceError(w, err, "reading history")
		return
	}

	core.OK(w, ToReadingHistoryResponse(entries))
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	var req PayBillRequest
	if !h.decode(w, r, &req) {
		return
	}

	billID, err := req.BillID.Int64()
	if err != nil {
		core.BadRequest(w, "billId must be numeric")
		return
	}
	consumerID, err := req.ConsumerNo.Int64()
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	payment, err := h.service.MarkBillPaid(r.Context(), billID, consumerID)
	if err != nil {
		core.ServiceError(w, err, "bill")
		return
	}

	core.OK(w, ToPaymentResponse(payment))
}

func (h *Handler) IssueBill(w http.ResponseWriter, r *http.Request) {
	var req IssueBillRequest
	if !h.decode(w, r, &req) {
		return
	}

	nb, err := req.ToNewBill()
	if err != nil {
		core.ServiceError(w, err, "bill")
		return
	}

	bill, err := h.service.IssueBill(r.Context(), nb)
	if err != nil {
		core.ServiceError(w, err, "referenced record")
		return
	}

	core.Created(w, ToBillResponse(bill))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}

	return true
}
