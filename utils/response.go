package utils

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Envelope is the response body shape of every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// MaxPage keeps (page-1)*limit far from overflowing the skip value.
const MaxPage = 1_000_000

func NewPagination(total int64, page, limit int) *Pagination {
	return &Pagination{
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: int64(math.Ceil(float64(total) / float64(limit))),
	}
}

// ParsePage reads page/limit query params, falling back to 1/10 on missing or
// invalid input and capping limit at MaxLimit and page at MaxPage.
func ParsePage(c echo.Context) (page, limit int) {
	page, limit = DefaultPage, DefaultLimit
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 {
		limit = l
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if page > MaxPage {
		page = MaxPage
	}
	return page, limit
}

func Success(c echo.Context, status int, data interface{}, message string) error {
	return c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

func SuccessList(c echo.Context, data interface{}, pagination *Pagination) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// APIError is returned by handlers and rendered by the central error handler.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

// Detail is the raw cause surfaced in the "error" field.
func (e *APIError) Detail() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func NewAPIError(status int, message string, err error) *APIError {
	return &APIError{Status: status, Message: message, Err: err}
}

func BadRequest(message string, err error) *APIError {
	return NewAPIError(http.StatusBadRequest, message, err)
}

func Unauthorized(message string, err error) *APIError {
	return NewAPIError(http.StatusUnauthorized, message, err)
}

func Forbidden(message string) *APIError {
	return NewAPIError(http.StatusForbidden, message, nil)
}

func NotFound(message string) *APIError {
	return NewAPIError(http.StatusNotFound, message, nil)
}

func Conflict(message string, err error) *APIError {
	return NewAPIError(http.StatusConflict, message, err)
}

func Internal(message string, err error) *APIError {
	return NewAPIError(http.StatusInternalServerError, message, err)
}

// AsAPIError converts any error into an APIError, keeping echo's own HTTP errors' codes.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		msg := http.StatusText(httpErr.Code)
		if s, ok := httpErr.Message.(string); ok {
			msg = s
		}
		return NewAPIError(httpErr.Code, msg, httpErr.Internal)
	}
	return Internal("Internal server error", err)
}
