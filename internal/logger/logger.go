package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDHeader заголовок с идентификатором запроса
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Init инициализирует zap логгер и делает его глобальным
func Init(level string) error {
	config := zap.NewProductionConfig()

	// Настройка формата времени
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	config.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := config.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(logger)
	return nil
}

// RequestLogger middleware-логер для входящих HTTP-запросов.
// Проставляет X-Request-ID, если клиент его не прислал.
func RequestLogger() gin.HandlerFunc {
	log := zap.L().With(zap.String("component", "http"))

	return func(c *gin.Context) {
		start := time.Now()
		uri := c.Request.RequestURI
		method := c.Request.Method

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next() // Выполнение следующего handler

		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("uri", uri),
			zap.String("method", method),
			zap.Duration("duration", time.Since(start)),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
		)
	}
}

// RequestID возвращает идентификатор текущего запроса
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func Close() {
	zap.L().Sync()
}
