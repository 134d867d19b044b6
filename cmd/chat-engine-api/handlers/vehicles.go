package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/astra-ai/astra/libs/chat-engine/internal/cache"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
	"github.com/astra-ai/astra/libs/chat-engine/internal/review"
	"github.com/astra-ai/astra/libs/chat-engine/internal/storage"
)

const defaultListLimit = 50

// VehicleHandler handles inventory and review requests.
type VehicleHandler struct {
	logger    *observability.Logger
	vehicles  cache.VehicleStore
	reviews   *storage.ReviewRepository
	generator *review.Generator
	store     *storage.Store
}

// NewVehicleHandler creates a new vehicle handler.
func NewVehicleHandler(logger *observability.Logger, vehicles cache.VehicleStore, reviews *storage.ReviewRepository, generator *review.Generator, store *storage.Store) *VehicleHandler {
	return &VehicleHandler{
		logger:    logger,
		vehicles:  vehicles,
		reviews:   reviews,
		generator: generator,
		store:     store,
	}
}

// CarListResponseDTO represents the inventory listing payload.
type CarListResponseDTO struct {
	Cars  []*storage.Vehicle `json:"cars"`
	Count int                `json:"count"`
}

// CarReviewsResponseDTO represents the per-vehicle reviews payload.
type CarReviewsResponseDTO struct {
	CarID   int64             `json:"car_id"`
	Reviews []*storage.Review `json:"reviews"`
	Stats   review.Stats      `json:"stats"`
}

// GenerateReviewRequestDTO represents the review generation request.
type GenerateReviewRequestDTO struct {
	CarID int64 `json:"car_id"`
}

// ListCars handles GET /api/cars.
func (h *VehicleHandler) ListCars(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := storage.VehicleFilter{
		Query:        r.URL.Query().Get("query"),
		Manufacturer: r.URL.Query().Get("manufacturer"),
		Limit:        defaultListLimit,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			h.writeError(w, http.StatusBadRequest, "invalid limit", raw)
			return
		}
		filter.Limit = limit
	}

	cars, err := h.vehicles.List(ctx, filter)
	if err != nil {
		h.logger.Error().Err(err).Msg("List cars failed")
		h.writeError(w, http.StatusInternalServerError, "list cars failed", err.Error())
		return
	}
	if cars == nil {
		cars = []*storage.Vehicle{}
	}

	h.writeJSON(w, http.StatusOK, CarListResponseDTO{Cars: cars, Count: len(cars)})
}

// GetCar handles GET /api/cars/{carID}.
func (h *VehicleHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.carID(w, r)
	if !ok {
		return
	}

	car, err := h.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "car not found", "")
			return
		}
		h.logger.Error().Err(err).Int64("car_id", id).Msg("Get car failed")
		h.writeError(w, http.StatusInternalServerError, "get car failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, car)
}

// ListCarReviews handles GET /api/cars/{carID}/reviews.
func (h *VehicleHandler) ListCarReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.carID(w, r)
	if !ok {
		return
	}

	if _, err := h.vehicles.GetByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "car not found", "")
			return
		}
		h.logger.Error().Err(err).Int64("car_id", id).Msg("Get car failed")
		h.writeError(w, http.StatusInternalServerError, "get car failed", err.Error())
		return
	}

	reviews, err := h.reviews.ListByVehicle(ctx, id)
	if err != nil {
		h.logger.Error().Err(err).Int64("car_id", id).Msg("List reviews failed")
		h.writeError(w, http.StatusInternalServerError, "list reviews failed", err.Error())
		return
	}
	if reviews == nil {
		reviews = []*storage.Review{}
	}

	h.writeJSON(w, http.StatusOK, CarReviewsResponseDTO{
		CarID:   id,
		Reviews: reviews,
		Stats:   review.ComputeStats(reviews),
	})
}

// ListManufacturers handles GET /api/manufacturers.
func (h *VehicleHandler) ListManufacturers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	manufacturers, err := h.vehicles.ListManufacturers(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("List manufacturers failed")
		h.writeError(w, http.StatusInternalServerError, "list manufacturers failed", err.Error())
		return
	}
	if manufacturers == nil {
		manufacturers = []string{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"manufacturers": manufacturers,
		"count":         len(manufacturers),
	})
}

// TestDB handles GET /api/test-db.
func (h *VehicleHandler) TestDB(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	repo := storage.NewVehicleRepository(h.store.DB)
	count, err := repo.Count(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("Database check failed")
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status": "error",
			"driver": h.store.Driver,
			"detail": err.Error(),
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "connected",
		"driver":         h.store.Driver,
		"using_fallback": h.store.UsingFallback,
		"car_count":      count,
	})
}

// GenerateReview handles POST /api/reviews/generate.
func (h *VehicleHandler) GenerateReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reqDTO GenerateReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if reqDTO.CarID <= 0 {
		h.writeError(w, http.StatusBadRequest, "car_id is required", "")
		return
	}

	car, err := h.vehicles.GetByID(ctx, reqDTO.CarID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "car not found", "")
			return
		}
		h.logger.Error().Err(err).Int64("car_id", reqDTO.CarID).Msg("Get car failed")
		h.writeError(w, http.StatusInternalServerError, "get car failed", err.Error())
		return
	}

	generated, err := h.generator.Generate(ctx, car)
	if err != nil {
		h.logger.Error().Err(err).Int64("car_id", reqDTO.CarID).Msg("Review generation failed")
		h.writeError(w, http.StatusInternalServerError, "review generation failed", err.Error())
		return
	}

	if err := h.reviews.Create(ctx, generated); err != nil {
		h.logger.Error().Err(err).Int64("car_id", reqDTO.CarID).Msg("Review persist failed")
		h.writeError(w, http.StatusInternalServerError, "review persist failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusCreated, generated)
}

func (h *VehicleHandler) carID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "carID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, http.StatusBadRequest, "invalid car id", raw)
		return 0, false
	}
	return id, true
}

func (h *VehicleHandler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *VehicleHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	json.NewEncoder(w).Encode(resp)
}
