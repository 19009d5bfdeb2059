// AngelaMos | 2026
// handler.go

package identity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/esb-backend/internal/core"
)

// Tokens are the static placeholders returned on authentication.
type Tokens struct {
	Consumer  string
	Inspector string
}

type Handler struct {
	service   *Service
	tokens    Tokens
	validator *validator.Validate
}

func NewHandler(service *Service, tokens Tokens) *Handler {
	return &Handler{
		service:   service,
		tokens:    tokens,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes puts attemptLimiter in front of every route that checks
// credentials.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	attemptLimiter func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(attemptLimiter)

		r.Post("/authenticate-user", h.AuthenticateUser)
		r.Post("/authenticate-inspector", h.AuthenticateInspector)
		r.Post("/verify-consumer", h.VerifyConsumer)
	})

	r.Delete("/persons/{personID}", h.DeletePerson)
}

func (h *Handler) AuthenticateUser(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if !h.decode(w, r, &req) {
		return
	}

	identityNumber, err := req.IdentityNumber.Int64()
	if err != nil {
		core.BadRequest(w, "identityNumber must be numeric")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), identityNumber, req.Mobile)
	if err != nil {
		core.ServiceError(w, err, "user")
		return
	}

	role := RoleUser
	if user.IsConsumer {
		role = RoleConsumer
	}

	core.OK(w, AuthResponse{
		Role:  role,
		Token: h.tokens.Consumer,
		User:  user,
	})
}

func (h *Handler) AuthenticateInspector(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if !h.decode(w, r, &req) {
		return
	}

	identityNumber, err := req.IdentityNumber.Int64()
	if err != nil {
		core.BadRequest(w, "identityNumber must be numeric")
		return
	}

	inspector, err := h.service.AuthenticateInspector(
		r.Context(),
		identityNumber,
		req.Mobile,
	)
	if err != nil {
		core.ServiceError(w, err, "inspector")
		return
	}

	core.OK(w, AuthResponse{
		Role:  RoleInspector,
		Token: h.tokens.Inspector,
		User:  inspector,
	})
}

func (h *Handler) VerifyConsumer(w http.ResponseWriter, r *http.Request) {
	var req VerifyConsumerRequest
	if !h.decode(w, r, &req) {
		return
	}

	consumerID, err := req.ConsumerNo.Int64()
	if err != nil {
		core.BadRequest(w, "consumerNo must be numeric")
		return
	}

	profile, err := h.service.VerifyConsumer(r.Context(), consumerID, req.Mobile)
	if err != nil {
		core.ServiceError(w, err, "consumer")
		return
	}

	core.OK(w, VerifyConsumerResponse{
		Verified: true,
		Message:  "Consumer verified successfully",
		User:     *profile,
	})
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	personID, err := strconv.ParseInt(chi.URLParam(r, "personID"), 10, 64)
	if err != nil {
		core.BadRequest(w, "personID must be numeric")
		return
	}

	if err := h.service.DeletePerson(r.Context(), personID); err != nil {
		core.ServiceError(w, err, "person")
		return
	}

	core.NoContent(w)
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
