package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"campusshare/internal/errors"
	"campusshare/internal/service"
)

// VerificationHandler handles identity verification endpoints.
type VerificationHandler struct {
	verificationService service.VerificationService
}

// NewVerificationHandler creates a new verification handler.
func NewVerificationHandler(verificationService service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationService: verificationService}
}

// Submit godoc
// @Summary Submit a campus ID image for verification
// @Tags verification
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id_image formData file true "Campus ID image"
// @Success 200 {object} service.SubmitResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /verification [post]
func (h *VerificationHandler) Submit(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("id_image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "id_image file is required",
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

	result, err := h.verificationService.Submit(c.Request().Context(), userID, fileHeader.Filename, data)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, result)
}

// Status godoc
// @Summary Get the latest verification status
// @Tags verification
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.StatusResult
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /verification/status [get]
func (h *VerificationHandler) Status(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	result, err := h.verificationService.Status(c.Request().Context(), userID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, result)
}
