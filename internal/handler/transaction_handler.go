package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campusshare/internal/errors"
	"campusshare/internal/model"
	"campusshare/internal/service"
)

// TransactionHandler handles the transaction lifecycle endpoints.
type TransactionHandler struct {
	transactionService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// TransactionResponse represents a transaction action response.
type TransactionResponse struct {
	Message     string             `json:"message"`
	Transaction *model.Transaction `json:"transaction"`
}

// TransactionListResponse represents a paginated transaction listing.
type TransactionListResponse struct {
	Transactions []model.Transaction `json:"transactions"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
}

func transactionID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid transaction ID",
			Code:  "INVALID_UUID",
		})
	}
	return id, nil
}

// Request godoc
// @Summary Request an item
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 201 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items/{id}/request [post]
func (h *TransactionHandler) Request(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid item ID",
			Code:  "INVALID_UUID",
		})
	}

	txn, err := h.transactionService.Request(c.Request().Context(), userID, itemID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, TransactionResponse{
		Message:     "item requested successfully",
		Transaction: txn,
	})
}

// Show godoc
// @Summary Get one transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id} [get]
func (h *TransactionHandler) Show(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	txn, err := h.transactionService.Get(c.Request().Context(), userID, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"transaction": txn,
	})
}

// Approve godoc
// @Summary Approve a request (donor only)
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id}/approve [put]
func (h *TransactionHandler) Approve(c echo.Context) error {
	return h.act(c, "request approved", h.transactionService.Approve)
}

// Meeting godoc
// @Summary Mark the meetup as in progress
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id}/meeting [put]
func (h *TransactionHandler) Meeting(c echo.Context) error {
	return h.act(c, "meetup started", h.transactionService.StartMeeting)
}

// Complete godoc
// @Summary Complete the handoff and award points
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id}/complete [put]
func (h *TransactionHandler) Complete(c echo.Context) error {
	return h.act(c, "transaction completed", h.transactionService.Complete)
}

// Cancel godoc
// @Summary Cancel a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id}/cancel [put]
func (h *TransactionHandler) Cancel(c echo.Context) error {
	return h.act(c, "transaction cancelled", h.transactionService.Cancel)
}

// act runs one guarded lifecycle action and renders the shared response shape.
func (h *TransactionHandler) act(
	c echo.Context,
	message string,
	fn func(ctx context.Context, actorID uint, id uuid.UUID) (*model.Transaction, error),
) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	txn, err := fn(c.Request().Context(), userID, id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, TransactionResponse{
		Message:     message,
		Transaction: txn,
	})
}

// UploadProof godoc
// @Summary Attach a proof photo to a transaction
// @Tags transactions
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param proof_photo formData file true "Proof photo"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /transactions/{id}/proof [post]
func (h *TransactionHandler) UploadProof(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := transactionID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("proof_photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "proof_photo file is required",
			Code:  "MISSING_FILE",
		})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "could not read uploaded file",
			Code:  "INVALID_FILE",
		})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "could not read uploaded file",
			Code:  "INVALID_FILE",
		})
	}

	txn, err := h.transactionService.UploadProof(c.Request().Context(), userID, id, fileHeader.Filename, data)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, TransactionResponse{
		Message:     "proof photo uploaded",
		Transaction: txn,
	})
}

// MyRequests godoc
// @Summary List the caller's requests as receiver
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} TransactionListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/requests [get]
func (h *TransactionHandler) MyRequests(c echo.Context) error {
	return h.list(c, h.transactionService.MyRequests)
}

// MyDonations godoc
// @Summary List the caller's donations as donor
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} TransactionListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/donations [get]
func (h *TransactionHandler) MyDonations(c echo.Context) error {
	return h.list(c, h.transactionService.MyDonations)
}

func (h *TransactionHandler) list(
	c echo.Context,
	fn func(ctx context.Context, userID uint, page, perPage int) ([]model.Transaction, int64, error),
) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	page := intQuery(c, "page", 1)
	txns, total, err := fn(c.Request().Context(), userID, page, intQuery(c, "per_page", 12))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, TransactionListResponse{
		Transactions: txns,
		Total:        total,
		Page:         page,
	})
}
