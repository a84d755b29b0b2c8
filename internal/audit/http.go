package audit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// HTTPObserver отправляет события на удалённый сервер в фоне
type HTTPObserver struct {
	url    string
	client *http.Client
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewHTTPObserver создаёт наблюдателя для отправки на HTTP endpoint
func NewHTTPObserver(url string) *HTTPObserver {
	return &HTTPObserver{
		url: url,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: zap.L().With(zap.String("component", "audit_http")),
	}
}

// Notify отправляет событие, не блокируя обработку запроса
func (h *HTTPObserver) Notify(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("ошибка сериализации", zap.Error(err))
		return
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.send(data)
	}()
}

func (h *HTTPObserver) send(data []byte) {
	resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(data))
	if err != nil {
		h.logger.Warn("ошибка отправки", zap.String("url", h.url), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		h.logger.Warn("сервер аудита вернул ошибку", zap.Int("status", resp.StatusCode))
	}
}

// Close дожидается отправки уже принятых событий
func (h *HTTPObserver) Close() error {
	h.wg.Wait()
	return nil
}
