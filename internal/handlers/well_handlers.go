package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"wellops-platform/internal/repository"
	"wellops-platform/internal/services"
	"wellops-platform/pkg/logging"
	"wellops-platform/pkg/metrics"
)

// WellHandler handles the well classification API endpoints
type WellHandler struct {
	querySvc *services.QueryService
	classify *services.ClassificationService
	logger   *logging.StructuredLogger
	metrics  *metrics.Collector
}

// NewWellHandler creates a new well handler
func NewWellHandler(
	querySvc *services.QueryService,
	classifySvc *services.ClassificationService,
	logger *logging.StructuredLogger,
	metricsCollector *metrics.Collector,
) *WellHandler {
	return &WellHandler{
		querySvc: querySvc,
		classify: classifySvc,
		logger:   logger,
		metrics:  metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PaginatedResponse represents a paginated API response
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalPages int         `json:"total_pages"`
}

// RunRequest is the body of POST /api/operations
type RunRequest struct {
	OperationName string   `json:"operation_name"`
	Description   string   `json:"description"`
	WellNames     []string `json:"well_names,omitempty"`
	StartDate     string   `json:"start_date,omitempty"`
	EndDate       string   `json:"end_date,omitempty"`
}

// GetWellTypes handles GET /api/welltypes
func (h *WellHandler) GetWellTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/welltypes").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)

	filter := repository.WellTypeFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if wellName := r.URL.Query().Get("well_name"); wellName != "" {
		filter.WellName = &wellName
	}

	operationID, ok, err := h.resolveOperation(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if ok {
		filter.OperationID = &operationID
	}

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.sendError(w, r, "invalid year, expected integer", http.StatusBadRequest)
			return
		}
		filter.Year = &year
	}

	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			h.sendError(w, r, "invalid month, expected integer between 1 and 12", http.StatusBadRequest)
			return
		}
		filter.Month = &month
	}

	rows, total, err := h.querySvc.GetWellTypes(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_WELLTYPES_ERROR] Failed to get well types", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/welltypes")
		h.sendError(w, r, "failed to retrieve well classifications", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/welltypes", "GET", "200")
	h.sendJSON(w, paginate(rows, total, page, limit), http.StatusOK)
}

// GetCompletionStatus handles GET /api/completions/status
func (h *WellHandler) GetCompletionStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/completions/status").Observe(duration.Seconds())
	}()

	page, limit := parsePagination(r)

	filter := repository.CompletionStatusFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}

	if wellName := r.URL.Query().Get("well_name"); wellName != "" {
		filter.WellName = &wellName
	}
	if completionName := r.URL.Query().Get("completion_name"); completionName != "" {
		filter.CompletionName = &completionName
	}
	if reservoir := r.URL.Query().Get("reservoir"); reservoir != "" {
		filter.Reservoir = &reservoir
	}

	operationID, ok, err := h.resolveOperation(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if ok {
		filter.OperationID = &operationID
	}

	if yearStr := r.URL.Query().Get("year"); yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			h.sendError(w, r, "invalid year, expected integer", http.StatusBadRequest)
			return
		}
		filter.Year = &year
	}

	if monthStr := r.URL.Query().Get("month"); monthStr != "" {
		month, err := strconv.Atoi(monthStr)
		if err != nil || month < 1 || month > 12 {
			h.sendError(w, r, "invalid month, expected integer between 1 and 12", http.StatusBadRequest)
			return
		}
		filter.Month = &month
	}

	rows, total, err := h.querySvc.GetCompletionStatus(ctx, filter)
	if err != nil {
		h.logger.Error(ctx, "[API_GET_COMPLETIONS_ERROR] Failed to get completion status", logging.Fields{
			"filter": filter,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/completions/status")
		h.sendError(w, r, "failed to retrieve completion status", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/completions/status", "GET", "200")
	h.sendJSON(w, paginate(rows, total, page, limit), http.StatusOK)
}

// ListOperations handles GET /api/operations
func (h *WellHandler) ListOperations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operations, err := h.querySvc.ListOperations(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_OPERATIONS_ERROR] Failed to list operations", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/operations")
		h.sendError(w, r, "failed to retrieve operations", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/operations", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"data": operations}, http.StatusOK)
}

// RunClassification handles POST /api/operations
func (h *WellHandler) RunClassification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	defer func() {
		duration := time.Since(startTime)
		h.metrics.APIRequestDuration.WithLabelValues("/api/operations").Observe(duration.Seconds())
	}()

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.OperationName == "" {
		h.sendError(w, r, "operation_name is required", http.StatusBadRequest)
		return
	}

	opts := services.RunOptions{
		OperationName: req.OperationName,
		Description:   req.Description,
		WellNames:     req.WellNames,
	}

	if req.StartDate != "" {
		startDate, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			h.sendError(w, r, "invalid start_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		opts.StartDate = &startDate
	}

	if req.EndDate != "" {
		endDate, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			h.sendError(w, r, "invalid end_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		opts.EndDate = &endDate
	}

	result, err := h.classify.Run(ctx, opts)
	if err != nil {
		h.logger.Error(ctx, "[API_RUN_ERROR] Classification run failed", logging.Fields{
			"operation_name": req.OperationName,
		}, err)
		h.metrics.RecordAPIError("run_error", "/api/operations")
		h.sendError(w, r, "classification run failed", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/operations", "POST", "201")
	h.sendJSON(w, result, http.StatusCreated)
}

// GetFleetSummary handles GET /api/fleet/summary
func (h *WellHandler) GetFleetSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	operationID, ok, err := h.resolveOperation(r)
	if err != nil {
		h.sendError(w, r, err.Error(), http.StatusBadRequest)
		return
	}
	if !ok {
		h.sendError(w, r, "operation_id or operation_name is required", http.StatusBadRequest)
		return
	}

	summary, err := h.querySvc.GetFleetSummary(ctx, operationID)
	if err != nil {
		var notFound *repository.NotFoundError
		if errors.As(err, &notFound) {
			h.sendError(w, r, notFound.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error(ctx, "[API_FLEET_SUMMARY_ERROR] Failed to get fleet summary", logging.Fields{
			"operation_id": operationID,
		}, err)
		h.metrics.RecordAPIError("internal_error", "/api/fleet/summary")
		h.sendError(w, r, "failed to retrieve fleet summary", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/fleet/summary", "GET", "200")
	h.sendJSON(w, summary, http.StatusOK)
}

// ListWells handles GET /api/wells
func (h *WellHandler) ListWells(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	wells, err := h.querySvc.ListWells(ctx)
	if err != nil {
		h.logger.Error(ctx, "[API_LIST_WELLS_ERROR] Failed to list wells", logging.Fields{}, err)
		h.metrics.RecordAPIError("internal_error", "/api/wells")
		h.sendError(w, r, "failed to retrieve wells", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/wells", "GET", "200")
	h.sendJSON(w, map[string]interface{}{"data": wells}, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *WellHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.querySvc.HealthCheck(ctx); err != nil {
		h.sendJSON(w, map[string]string{
			"status":    "unhealthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, http.StatusServiceUnavailable)
		return
	}

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// resolveOperation extracts the run selector from query parameters:
// operation_id wins, operation_name resolves to the newest run under
// that name. Returns ok=false when neither is present.
func (h *WellHandler) resolveOperation(r *http.Request) (int64, bool, error) {
	if idStr := r.URL.Query().Get("operation_id"); idStr != "" {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return 0, false, errors.New("invalid operation_id, expected integer")
		}
		return id, true, nil
	}

	if name := r.URL.Query().Get("operation_name"); name != "" {
		id, err := h.querySvc.GetLatestOperationID(r.Context(), name)
		if err != nil {
			return 0, false, errors.New("unknown operation_name")
		}
		return id, true, nil
	}

	return 0, false, nil
}

// parsePagination reads page/limit query parameters with defaults
func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 100

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	return page, limit
}

// paginate wraps a result page in the standard envelope
func paginate(data interface{}, total, page, limit int) PaginatedResponse {
	return PaginatedResponse{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}
}

// sendJSON sends a JSON response
func (h *WellHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *WellHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all well classification API routes
func (h *WellHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/welltypes", h.GetWellTypes).Methods("GET")
	router.HandleFunc("/api/completions/status", h.GetCompletionStatus).Methods("GET")
	router.HandleFunc("/api/operations", h.ListOperations).Methods("GET")
	router.HandleFunc("/api/operations", h.RunClassification).Methods("POST")
	router.HandleFunc("/api/fleet/summary", h.GetFleetSummary).Methods("GET")
	router.HandleFunc("/api/wells", h.ListWells).Methods("GET")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
