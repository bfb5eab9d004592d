package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"campusshare/internal/errors"
	"campusshare/internal/repository"
	"campusshare/internal/service"
)

// ItemHandler handles item listing endpoints.
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItemRequest represents the multipart fields of a new listing.
type CreateItemRequest struct {
	Title          string `form:"title" validate:"required,max=255"`
	Description    string `form:"description" validate:"required"`
	Category       string `form:"category" validate:"required"`
	Condition      string `form:"condition" validate:"required"`
	Campus         string `form:"campus" validate:"required"`
	MeetupLocation string `form:"meetup_location"`
}

// UpdateItemRequest represents a partial item update.
type UpdateItemRequest struct {
	Title          *string `json:"title" validate:"omitempty,max=255"`
	Description    *string `json:"description"`
	Category       *string `json:"category"`
	Condition      *string `json:"condition"`
	Campus         *string `json:"campus"`
	MeetupLocation *string `json:"meetup_location"`
}

// ItemListResponse represents a paginated item listing.
type ItemListResponse struct {
	Items interface{} `json:"items"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
}

func readUploads(files []*multipart.FileHeader) ([]service.ImageUpload, error) {
	uploads := make([]service.ImageUpload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, service.ImageUpload{Filename: fh.Filename, Data: data})
	}
	return uploads, nil
}

func intQuery(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// Create godoc
// @Summary List a new item
// @Tags items
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param condition formData string true "Condition"
// @Param campus formData string true "Campus"
// @Param meetup_location formData string false "Meetup location"
// @Param images formData file false "Item images"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items [post]
func (h *ItemHandler) Create(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var uploads []service.ImageUpload
	if form, err := c.MultipartForm(); err == nil {
		uploads, err = readUploads(form.File["images"])
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "could not read uploaded images",
				Code:  "INVALID_FILE",
			})
		}
	}

	item, err := h.itemService.Create(c.Request().Context(), userID, service.CreateItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Condition:      req.Condition,
		Campus:         req.Campus,
		MeetupLocation: req.MeetupLocation,
	}, uploads)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "item listed successfully",
		"item":    item,
	})
}

// Browse godoc
// @Summary Browse active items
// @Tags items
// @Produce json
// @Param search query string false "Search in title and description"
// @Param category query string false "Category filter"
// @Param campus query string false "Campus filter"
// @Param condition query string false "Condition filter"
// @Param sort query string false "Sort order: newest, oldest, popular"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} ItemListResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items [get]
func (h *ItemHandler) Browse(c echo.Context) error {
	filter := repository.ItemFilter{
		Search:    c.QueryParam("search"),
		Category:  c.QueryParam("category"),
		Campus:    c.QueryParam("campus"),
		Condition: c.QueryParam("condition"),
		Sort:      c.QueryParam("sort"),
		Page:      intQuery(c, "page", 1),
		PerPage:   intQuery(c, "per_page", 12),
	}

	items, total, err := h.itemService.Browse(c.Request().Context(), filter)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, ItemListResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
	})
}

// Show godoc
// @Summary Get one item and count the view
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items/{id} [get]
func (h *ItemHandler) Show(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid item ID",
			Code:  "INVALID_UUID",
		})
	}

	item, err := h.itemService.View(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"item": item,
	})
}

// Update godoc
// @Summary Update an item
// @Tags items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Param request body UpdateItemRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items/{id} [put]
func (h *ItemHandler) Update(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid item ID",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.itemService.Update(c.Request().Context(), userID, id, service.UpdateItemInput{
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		Condition:      req.Condition,
		Campus:         req.Campus,
		MeetupLocation: req.MeetupLocation,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "item updated successfully",
		"item":    item,
	})
}

// Delete godoc
// @Summary Remove an item
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param id path string true "Item ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /items/{id} [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid item ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.itemService.Remove(c.Request().Context(), userID, id); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "item removed successfully",
	})
}

// MyItems godoc
// @Summary List the caller's items with monthly quota usage
// @Tags items
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /user/items [get]
func (h *ItemHandler) MyItems(c echo.Context) error {
	userID, err := userIDFromContext(c)
	if err != nil {
		return err
	}

	items, total, quota, err := h.itemService.MyItems(
		c.Request().Context(),
		userID,
		intQuery(c, "page", 1),
		intQuery(c, "per_page", 12),
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"quota": quota,
	})
}
