package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/asoma0710/message-search-engine/internal/search"
	"github.com/asoma0710/message-search-engine/internal/service"
	apperrors "github.com/asoma0710/message-search-engine/pkg/errors"
)

// MessageController handles the search and listing endpoints.
type MessageController struct {
	messageService *service.MessageService
}

// NewMessageController creates a new message controller
func NewMessageController(messageService *service.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// RegisterRoutes registers the routes for the message controller
func (c *MessageController) RegisterRoutes(router *gin.Engine) {
	router.GET("/search", c.Search)
	router.GET("/messages/", c.ListMessages)
}

// Search handles GET /search?q=&page=&page_size=
// Absent page and page_size pick up their defaults here; explicit values,
// zero included, go to the executor as given so it can reject them.
func (c *MessageController) Search(ctx *gin.Context) {
	page, err := intQuery(ctx, "page", 1)
	if err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidPage, "Page must be an integer"))
		return
	}

	pageSize, err := intQuery(ctx, "page_size", c.messageService.DefaultPageSize())
	if err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidPageSize, "Page size must be an integer"))
		return
	}

	params := search.Params{
		Query:    ctx.Query("q"),
		Page:     page,
		PageSize: pageSize,
	}

	response, err := c.messageService.Search(ctx.Request.Context(), params)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// ListMessages handles GET /messages/?skip=&limit= over the cached snapshot.
// It does not call the upstream API on every request; it reads the data the
// cache holds, refetching only when the snapshot expired.
func (c *MessageController) ListMessages(ctx *gin.Context) {
	skip, err := intQuery(ctx, "skip", 0)
	if err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidSkip, "Skip must be an integer"))
		return
	}

	limit, err := intQuery(ctx, "limit", 100)
	if err != nil {
		ctx.Error(apperrors.NewBadRequestError(apperrors.CodeInvalidLimit, "Limit must be an integer"))
		return
	}

	response, err := c.messageService.List(ctx.Request.Context(), skip, limit)
	if err != nil {
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// intQuery parses an optional integer query parameter.
func intQuery(ctx *gin.Context, name string, defaultValue int) (int, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}
