package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/okian/fishery/internal/domain/model"
	"github.com/okian/fishery/pkg/logger"
	"github.com/okian/fishery/pkg/metrics"
)

// Success messages returned by the fish endpoint.
const (
	msgAdded   = "Fish added successfully!"
	msgUpdated = "Fish updated successfully!"
	msgDeleted = "Fish deleted successfully!"
)

// FishDependencies is the record service the fish endpoint delegates to.
type FishDependencies interface {
	List(ctx context.Context) ([]model.FishRecord, error)
	Create(ctx context.Context, rec model.FishRecord) error
	Update(ctx context.Context, rec model.FishRecord) error
	Delete(ctx context.Context, id int64) error
	VerboseLogging() bool
}

// createRequest is the POST body. "required" rejects zero values, so a Sell
// of 0 counts as missing.
type createRequest struct {
	Name   string `json:"Name" validate:"required"`
	Sell   int64  `json:"Sell" validate:"required"`
	Shadow string `json:"Shadow" validate:"required"`
	Where  string `json:"Where" validate:"required"`
}

type updateRequest struct {
	ID     int64  `json:"Id" validate:"required"`
	Name   string `json:"Name" validate:"required"`
	Sell   int64  `json:"Sell" validate:"required"`
	Shadow string `json:"Shadow" validate:"required"`
	Where  string `json:"Where" validate:"required"`
}

type deleteRequest struct {
	ID int64 `json:"Id" validate:"required"`
}

type successResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FishHandler serves list, create, update and delete on one path,
// dispatching on the HTTP method.
type FishHandler struct {
	deps     FishDependencies
	validate *validator.Validate
	logger   logger.Logger
}

// NewFishHandler creates a new fish handler.
func NewFishHandler(deps FishDependencies) *FishHandler {
	return &FishHandler{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.Get().Named("api"),
	}
}

// ServeHTTP is the handler boundary: any error a branch returns, or any
// panic it raises, becomes a 500 carrying the error's message.
func (h *FishHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	defer func() {
		if v := recover(); v != nil {
			metrics.RecordPanicRecovered()
			msg := unknownErrorMessage
			if err, ok := v.(error); ok && err.Error() != "" {
				msg = err.Error()
			}
			h.logger.Error(ctx, "recovered panic in fish handler",
				logger.String("method", r.Method),
				logger.Any("panic", v),
			)
			writeError(w, http.StatusInternalServerError, WrapKind("api.fish", ErrPanic, errors.New(msg)))
		}
	}()

	if h.deps.VerboseLogging() {
		h.logger.Info(ctx, "fish request", logger.String("method", r.Method))
	}

	if err := h.dispatch(w, r); err != nil {
		h.logger.Error(ctx, "fish request failed",
			logger.String("method", r.Method),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (h *FishHandler) dispatch(w http.ResponseWriter, r *http.Request) error {
	switch r.Method {
	case http.MethodGet:
		return h.list(w, r)
	case http.MethodPost:
		return h.create(w, r)
	case http.MethodPut:
		return h.update(w, r)
	case http.MethodDelete:
		return h.remove(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, ErrMethodNotAllowed)
		return nil
	}
}

func (h *FishHandler) list(w http.ResponseWriter, r *http.Request) error {
	const op = "api.list_fish"
	records, err := h.deps.List(r.Context())
	if err != nil {
		return WrapKind(op, ErrStore, err)
	}
	if records == nil {
		records = []model.FishRecord{}
	}
	writeJSON(w, http.StatusOK, records)
	return nil
}

func (h *FishHandler) create(w http.ResponseWriter, r *http.Request) error {
	const op = "api.create_fish"
	var req createRequest
	if err := h.decode(r, op, &req); err != nil {
		return err
	}
	if !h.valid(w, r, "create", req) {
		return nil
	}

	rec := model.FishRecord{Name: req.Name, Sell: req.Sell, Shadow: req.Shadow, Where: req.Where}
	if err := h.deps.Create(r.Context(), rec); err != nil {
		return WrapKind(op, ErrStore, err)
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgAdded})
	return nil
}

// update answers store failures itself instead of handing them to the boundary.
func (h *FishHandler) update(w http.ResponseWriter, r *http.Request) error {
	const op = "api.update_fish"
	var req updateRequest
	if err := h.decode(r, op, &req); err != nil {
		return err
	}
	if !h.valid(w, r, "update", req) {
		return nil
	}

	rec := model.FishRecord{ID: req.ID, Name: req.Name, Sell: req.Sell, Shadow: req.Shadow, Where: req.Where}
	if err := h.deps.Update(r.Context(), rec); err != nil {
		h.storeFailed(w, r, WrapKind(op, ErrStore, err))
		return nil
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgUpdated})
	return nil
}

// remove answers store failures itself instead of handing them to the boundary.
func (h *FishHandler) remove(w http.ResponseWriter, r *http.Request) error {
	const op = "api.delete_fish"
	var req deleteRequest
	if err := h.decode(r, op, &req); err != nil {
		return err
	}
	if !h.valid(w, r, "delete", req) {
		return nil
	}

	if err := h.deps.Delete(r.Context(), req.ID); err != nil {
		h.storeFailed(w, r, WrapKind(op, ErrStore, err))
		return nil
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true, Message: msgDeleted})
	return nil
}

// decode reads exactly one JSON value from the body into dst. An empty body,
// a null body or anything after the value is a decode failure.
func (h *FishHandler) decode(r *http.Request, op string, dst any) error {
	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrEmptyBody
		}
		return WrapKind(op, ErrDecode, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			err = ErrTrailingData
		}
		return WrapKind(op, ErrDecode, err)
	}
	if bytes.Equal(raw, []byte("null")) {
		return WrapKind(op, ErrDecode, ErrNullBody)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return WrapKind(op, ErrDecode, err)
	}

	if h.deps.VerboseLogging() {
		h.logger.Info(r.Context(), "fish request payload",
			logger.String("method", r.Method),
			logger.Any("payload", dst),
		)
	}
	return nil
}

// valid writes the 400 response and reports false when a field is missing.
func (h *FishHandler) valid(w http.ResponseWriter, r *http.Request, operation string, req any) bool {
	err := h.validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		panic(fmt.Errorf("validating %s request: %w", operation, err))
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	metrics.RecordValidationFailure(operation)
	if h.deps.VerboseLogging() {
		h.logger.Info(r.Context(), "rejected fish request",
			logger.String("operation", operation),
			logger.Any("missing", fields),
		)
	}
	writeError(w, http.StatusBadRequest, WrapKind("api."+operation+"_fish", ErrBadRequest, ErrMissingFields))
	return false
}

func (h *FishHandler) storeFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(r.Context(), "fish store call failed",
		logger.String("method", r.Method),
		logger.Error(err),
	)
	writeError(w, http.StatusInternalServerError, err)
}
