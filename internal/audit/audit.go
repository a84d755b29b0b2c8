// Package audit рассылает события жизненного цикла ссылок наблюдателям:
// в файл и на внешний HTTP сервер.
package audit

import (
	"errors"
	"sync"
	"time"
)

// Action тип действия аудита
type Action string

const (
	ActionCreate Action = "created"
	ActionDelete Action = "deleted"
)

// Event структура события аудита
type Event struct {
	Timestamp int64  `json:"ts"`
	Action    Action `json:"action"`
	ID        int64  `json:"id,omitempty"`
	Alias     string `json:"alias,omitempty"`
	URL       string `json:"url,omitempty"`
}

// NewEvent создаёт новое событие аудита
func NewEvent(action Action, alias, url string) Event {
	return Event{
		Timestamp: time.Now().Unix(),
		Action:    action,
		Alias:     alias,
		URL:       url,
	}
}

// NewDeleteEvent событие удаления ссылки по id
func NewDeleteEvent(id int64) Event {
	return Event{
		Timestamp: time.Now().Unix(),
		Action:    ActionDelete,
		ID:        id,
	}
}

type Observer interface {
	Notify(event Event)
	Close() error
}

type Publisher struct {
	mu          sync.Mutex
	subscribers []Observer
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

func (p *Publisher) Subscribe(o Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers = append(p.subscribers, o)
}

// Publish раздаёт событие всем наблюдателям. nil Publisher ничего не делает.
func (p *Publisher) Publish(event Event) {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.subscribers {
		s.Notify(event)
	}
}

// Close закрывает всех наблюдателей и возвращает все ошибки закрытия
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for _, obs := range p.subscribers {
		if err := obs.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
