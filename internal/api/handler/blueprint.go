package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/arsw/blueprints/internal/api/middleware"
	"github.com/arsw/blueprints/internal/api/response"
	"github.com/arsw/blueprints/internal/api/validation"
	"github.com/arsw/blueprints/internal/blueprint"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// BlueprintService is the subset of service.BlueprintService the handler needs.
type BlueprintService interface {
	Create(ctx context.Context, bp blueprint.Blueprint) (blueprint.Blueprint, error)
	AppendPoint(ctx context.Context, author, name string, p blueprint.Point) error
	Get(ctx context.Context, author, name string) (blueprint.Blueprint, error)
	GetByAuthor(ctx context.Context, author string) ([]blueprint.Blueprint, error)
	GetAll(ctx context.Context) ([]blueprint.Blueprint, error)
}

// pointPayload is the JSON shape of a point.
type pointPayload struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// createBlueprintRequest is the request body for POST /api/v1/blueprints.
type createBlueprintRequest struct {
	Author string         `json:"author"`
	Name   string         `json:"name"`
	Points []pointPayload `json:"points"`
}

// appendPointRequest is the request body for PUT /api/v1/blueprints/{author}/{bpname}/points.
type appendPointRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// blueprintResponse is the API representation of a blueprint.
type blueprintResponse struct {
	Author string         `json:"author"`
	Name   string         `json:"name"`
	Points []pointPayload `json:"points"`
}

func toBlueprintResponse(bp blueprint.Blueprint) blueprintResponse {
	points := make([]pointPayload, len(bp.Points))
	for i, p := range bp.Points {
		points[i] = pointPayload{X: p.X, Y: p.Y}
	}
	return blueprintResponse{Author: bp.Author, Name: bp.Name, Points: points}
}

func toBlueprintResponses(bps []blueprint.Blueprint) []blueprintResponse {
	items := make([]blueprintResponse, 0, len(bps))
	for _, bp := range bps {
		items = append(items, toBlueprintResponse(bp))
	}
	return items
}

// BlueprintHandler handles the blueprint endpoints.
type BlueprintHandler struct {
	svc BlueprintService
}

// NewBlueprintHandler creates a new BlueprintHandler.
func NewBlueprintHandler(svc BlueprintService) *BlueprintHandler {
	return &BlueprintHandler{svc: svc}
}

// decodeJSON reads a single JSON object from the limited request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// Create handles POST /api/v1/blueprints.
func (h *BlueprintHandler) Create(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var req createBlueprintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, http.StatusBadRequest, response.CodeInvalidJSON, "Request body must be valid JSON", requestID)
		return
	}

	req.Author = strings.TrimSpace(req.Author)
	req.Name = strings.TrimSpace(req.Name)

	coords := make([]validation.Coordinate, len(req.Points))
	for i, p := range req.Points {
		coords[i] = validation.Coordinate{X: p.X, Y: p.Y}
	}
	fieldErrors := validation.ValidateCreateBlueprintRequest(validation.CreateBlueprintRequest{
		Author: req.Author,
		Name:   req.Name,
		Points: coords,
	})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, response.CodeValidation, "Input validation failed", fieldErrors, requestID)
		return
	}

	bp := blueprint.Blueprint{
		Author: req.Author,
		Name:   req.Name,
		Points: make([]blueprint.Point, len(req.Points)),
	}
	for i, p := range req.Points {
		bp.Points[i] = blueprint.Point{X: p.X, Y: p.Y}
	}

	created, err := h.svc.Create(r.Context(), bp)
	if err != nil {
		if errors.Is(err, blueprint.ErrConflict) {
			response.Err(w, http.StatusConflict, response.CodeDuplicateBlueprint,
				fmt.Sprintf("Blueprint %q by %q already exists", req.Name, req.Author), requestID)
			return
		}
		middleware.Logger(r.Context()).Error("failed to create blueprint", "error", err, "author", req.Author, "name", req.Name)
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to create blueprint", requestID)
		return
	}

	response.Success(w, http.StatusCreated, toBlueprintResponse(created), requestID)
}

// List handles GET /api/v1/blueprints.
func (h *BlueprintHandler) List(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	bps, err := h.svc.GetAll(r.Context())
	if err != nil {
		middleware.Logger(r.Context()).Error("failed to list blueprints", "error", err)
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to list blueprints", requestID)
		return
	}

	items := toBlueprintResponses(bps)
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// ListByAuthor handles GET /api/v1/blueprints/{author}.
func (h *BlueprintHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	author := chi.URLParam(r, "author")

	bps, err := h.svc.GetByAuthor(r.Context(), author)
	if err != nil {
		if errors.Is(err, blueprint.ErrNotFound) {
			response.Err(w, http.StatusNotFound, response.CodeNotFound, fmt.Sprintf("No blueprints found for author %q", author), requestID)
			return
		}
		middleware.Logger(r.Context()).Error("failed to list blueprints by author", "error", err, "author", author)
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to list blueprints", requestID)
		return
	}

	items := toBlueprintResponses(bps)
	response.SuccessList(w, http.StatusOK, items, len(items), requestID)
}

// Get handles GET /api/v1/blueprints/{author}/{bpname}.
func (h *BlueprintHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	author := chi.URLParam(r, "author")
	name := chi.URLParam(r, "bpname")

	bp, err := h.svc.Get(r.Context(), author, name)
	if err != nil {
		if errors.Is(err, blueprint.ErrNotFound) {
			response.Err(w, http.StatusNotFound, response.CodeNotFound, "Blueprint not found", requestID)
			return
		}
		middleware.Logger(r.Context()).Error("failed to get blueprint", "error", err, "author", author, "name", name)
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to get blueprint", requestID)
		return
	}

	response.Success(w, http.StatusOK, toBlueprintResponse(bp), requestID)
}

// AppendPoint handles PUT /api/v1/blueprints/{author}/{bpname}/points.
func (h *BlueprintHandler) AppendPoint(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	author := chi.URLParam(r, "author")
	name := chi.URLParam(r, "bpname")

	var req appendPointRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Err(w, http.StatusBadRequest, response.CodeInvalidJSON, "Request body must be valid JSON", requestID)
		return
	}

	fieldErrors := validation.ValidateAppendPointRequest(validation.AppendPointRequest{X: req.X, Y: req.Y})
	if len(fieldErrors) > 0 {
		response.ErrWithDetails(w, http.StatusBadRequest, response.CodeValidation, "Input validation failed", fieldErrors, requestID)
		return
	}

	err := h.svc.AppendPoint(r.Context(), author, name, blueprint.Point{X: *req.X, Y: *req.Y})
	if err != nil {
		if errors.Is(err, blueprint.ErrNotFound) {
			response.Err(w, http.StatusNotFound, response.CodeNotFound, "Blueprint not found", requestID)
			return
		}
		middleware.Logger(r.Context()).Error("failed to append point", "error", err, "author", author, "name", name)
		response.Err(w, http.StatusInternalServerError, response.CodeInternal, "Failed to append point", requestID)
		return
	}

	response.Success(w, http.StatusAccepted, nil, requestID)
}
