package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Popolzen/linkalias/internal/audit"
	"github.com/Popolzen/linkalias/internal/logger"
	"github.com/Popolzen/linkalias/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/xhit/go-str2duration/v2"
	"go.uber.org/zap"
)

const (
	internalErrorMessage   = "Internal Server Error"
	invalidDurationMessage = `Invalid duration format. Use something like "5m", "2h", "1d", etc...`
)

// ErrInvalidDuration срок жизни не разобран или не положителен
var ErrInvalidDuration = errors.New("invalid duration")

// URLService операции над ссылками, которые нужны обработчикам
type URLService interface {
	Create(ctx context.Context, originalURL, customAlias string, expiresIn time.Duration) (string, error)
	Resolve(ctx context.Context, alias string) (string, error)
	List(ctx context.Context) ([]model.ShortenedURL, error)
	Delete(ctx context.Context, id int64) error
	Ping(ctx context.Context) error
}

// CreateHandler создает короткую ссылку
func CreateHandler(urlService URLService, auditPub *audit.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, validationMessage(err))
			return
		}

		expiresIn, err := ParseExpiresIn(req.ExpiresIn)
		if err != nil {
			badRequest(c, invalidDurationMessage)
			return
		}

		shortURL, err := urlService.Create(c.Request.Context(), req.URL, req.CustomAlias, expiresIn)
		if err != nil {
			if errors.Is(err, model.ErrAliasAlreadyExists) && req.CustomAlias != "" {
				c.JSON(http.StatusConflict, model.ErrorResponse{
					Error: fmt.Sprintf("Alias %q already exists", req.CustomAlias),
				})
				return
			}
			writeError(c, err)
			return
		}

		auditPub.Publish(audit.NewEvent(audit.ActionCreate, aliasOf(shortURL), req.URL))
		c.JSON(http.StatusOK, model.CreateResponse{ShortURL: shortURL})
	}
}

// ListHandler возвращает все ссылки, включая истёкшие
func ListHandler(urlService URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		urls, err := urlService.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, urls)
	}
}

// DeleteHandler удаляет ссылку по id
func DeleteHandler(urlService URLService, auditPub *audit.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			badRequest(c, "ID must be an integer")
			return
		}
		if id <= 0 {
			badRequest(c, "ID must be a positive integer")
			return
		}

		if err := urlService.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}

		auditPub.Publish(audit.NewDeleteEvent(id))
		c.Status(http.StatusNoContent)
	}
}

// RedirectHandler перенаправляет по короткой ссылке
func RedirectHandler(urlService URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		originalURL, err := urlService.Resolve(c.Request.Context(), c.Param("alias"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Redirect(http.StatusFound, originalURL)
	}
}

// PingHandler проверяет доступность хранилища
func PingHandler(urlService URLService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := urlService.Ping(c.Request.Context()); err != nil {
			zap.L().Error("хранилище недоступно", zap.Error(err))
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	}
}

// ParseExpiresIn разбирает срок жизни ссылки: "5m", "2h", "1d", "1w"
// или число миллисекунд. Пустая строка - бессрочная ссылка.
func ParseExpiresIn(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		if ms <= 0 {
			return 0, ErrInvalidDuration
		}
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := str2duration.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, ErrInvalidDuration
	}
	return d, nil
}

// writeError единственное место, где доменные ошибки превращаются в HTTP статусы
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrAliasAlreadyExists):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "Alias already exists"})
	case errors.Is(err, model.ErrAliasReserved):
		c.JSON(http.StatusConflict, model.ErrorResponse{Error: "Alias is reserved"})
	case errors.Is(err, model.ErrAliasDoesNotExist), errors.Is(err, model.ErrAliasIsExpired):
		// истёкший алиас снаружи неотличим от несуществующего
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "Alias does not exist"})
	case errors.Is(err, model.ErrMappingNotFound):
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: "URL mapping not found"})
	case errors.Is(err, model.ErrInvalidExpiration):
		badRequest(c, invalidDurationMessage)
	default:
		zap.L().Error("ошибка обработки запроса",
			zap.String("request_id", logger.RequestID(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: internalErrorMessage})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: msg})
}

// validationMessage переводит ошибку биндинга в сообщение для клиента
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}

	fe := verrs[0]
	switch fe.Field() {
	case "URL":
		if fe.Tag() == "required" {
			return "url field is required"
		}
		return "Invalid URL"
	case "CustomAlias":
		if fe.Tag() == "max" {
			return "Alias must be at most 20 characters long"
		}
		return "Alias must be alphanumeric"
	}
	return fe.Error()
}

func aliasOf(shortURL string) string {
	return shortURL[strings.LastIndex(shortURL, "/")+1:]
}

// Register вешает маршруты сервиса на роутер
func Register(r gin.IRouter, urlService URLService, auditPub *audit.Publisher) {
	api := r.Group("/api")
	api.POST("/urls", CreateHandler(urlService, auditPub))
	api.GET("/urls", ListHandler(urlService))
	api.DELETE("/urls/:id", DeleteHandler(urlService, auditPub))

	r.GET("/ping", PingHandler(urlService))
	r.GET("/:alias", RedirectHandler(urlService))
}
