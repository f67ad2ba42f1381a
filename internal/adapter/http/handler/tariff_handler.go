package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sgcerp/tajbilling/internal/adapter/http/dto"
	"github.com/sgcerp/tajbilling/internal/adapter/http/middleware"
	"github.com/sgcerp/tajbilling/internal/domain"
	"github.com/sgcerp/tajbilling/internal/usecase"
)

// TariffHandler handles tariff-related HTTP requests.
type TariffHandler struct {
	tariffUC *usecase.TariffUseCase
}

// NewTariffHandler creates a new TariffHandler.
func NewTariffHandler(tariffUC *usecase.TariffUseCase) *TariffHandler {
	return &TariffHandler{tariffUC: tariffUC}
}

// Activate puts a new tariff version in force.
func (h *TariffHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req dto.ActivateTariffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	version, err := h.tariffUC.Activate(r.Context(), req.ToUseCaseInput(actor))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to activate tariff", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TariffVersionFromDomain(version))
}

// Active returns the tariff version in force at a date (default today).
func (h *TariffHandler) Active(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid as_of date", err.Error())
			return
		}
		asOf = parsed
	}

	version, err := h.tariffUC.ActiveAt(r.Context(), asOf)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve tariff", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TariffVersionFromDomain(version))
}

// List lists tariff versions, newest first.
func (h *TariffHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", domain.DefaultPageSize)
	offset := parseIntQuery(r, "offset", 0)

	versions, err := h.tariffUC.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tariffs", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TariffVersionsFromDomain(versions))
}
