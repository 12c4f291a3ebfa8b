package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	svcErr "github.com/oggyb/cardswap/internal/errors"
	"github.com/oggyb/cardswap/internal/utils/pagination"
)

// Envelope is the body of every API response.
type Envelope struct {
	Data  any        `json:"data"`
	Meta  *Meta      `json:"meta,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

type Meta struct {
	NextPageToken *string `json:"next_page_token,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OK writes data with the given status.
func OK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Data: data})
}

// Page writes one page of a cursor-paginated list.
func Page(c *gin.Context, data any, next *string) {
	c.JSON(http.StatusOK, Envelope{Data: data, Meta: &Meta{NextPageToken: next}})
}

// Fail maps err to a status code and a client-safe message. Internal errors
// are logged with their cause.
func Fail(c *gin.Context, err error) {
	status := svcErr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"err", err,
		)
	}
	c.AbortWithStatusJSON(status, Envelope{Error: &ErrorBody{
		Code:    svcErr.KindOf(err).String(),
		Message: svcErr.PublicMessage(err),
	}})
}

// BindJSON decodes the request body, failing the request with 422 on bad input.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Fail(c, svcErr.Validation("invalid request body: "+err.Error()))
		return false
	}
	return true
}

// PageParams reads page_token and limit from the query string.
func PageParams(c *gin.Context) (*string, int) {
	var token *string
	if t := c.Query("page_token"); t != "" {
		token = &t
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	return token, pagination.ClampLimit(limit)
}
