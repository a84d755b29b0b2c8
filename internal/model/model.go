package model

import (
	"errors"
	"time"
)

// Mapping связь алиаса с исходным URL
type Mapping struct {
	ID          int64      `json:"id"`
	OriginalURL string     `json:"original_url"`
	Alias       string     `json:"alias"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// IsExpired сообщает, истёк ли срок действия ссылки на момент now.
// Запись без ExpiresAt не истекает никогда.
func (m Mapping) IsExpired(now time.Time) bool {
	return m.ExpiresAt != nil && !now.Before(*m.ExpiresAt)
}

// ShortenedURL запись для выдачи списка ссылок
type ShortenedURL struct {
	ID          int64      `json:"id"`
	OriginalURL string     `json:"originalUrl"`
	ShortURL    string     `json:"shortUrl"`
	Alias       string     `json:"-"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// CreateRequest тело запроса на создание ссылки
type CreateRequest struct {
	URL         string `json:"url" binding:"required,url"`
	CustomAlias string `json:"customAlias" binding:"omitempty,alphanum,max=20"`
	ExpiresIn   string `json:"expiresIn"`
}

// CreateResponse ответ на создание ссылки
type CreateResponse struct {
	ShortURL string `json:"shortUrl"`
}

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// Доменные ошибки сервиса
var (
	ErrAliasAlreadyExists = errors.New("alias already exists")
	ErrAliasReserved      = errors.New("alias is reserved for generated links")
	ErrAliasDoesNotExist  = errors.New("alias does not exist")
	ErrAliasIsExpired     = errors.New("alias is expired")
	ErrMappingNotFound    = errors.New("url mapping not found")
	ErrInvalidExpiration  = errors.New("expiration must be a positive duration")
)
