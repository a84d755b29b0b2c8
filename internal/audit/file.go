package audit

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FileObserver пишет события в файл построчно в JSON
type FileObserver struct {
	file   *os.File
	mu     sync.Mutex
	logger *zap.Logger
}

// NewFileObserver открывает файл на дозапись
func NewFileObserver(path string) (*FileObserver, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileObserver{
		file:   file,
		logger: zap.L().With(zap.String("component", "audit_file")),
	}, nil
}

// Notify записывает событие в файл
func (f *FileObserver) Notify(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("ошибка сериализации", zap.Error(err))
		return
	}

	data = append(data, '\n')
	if _, err := f.file.Write(data); err != nil {
		f.logger.Error("ошибка записи", zap.String("path", f.file.Name()), zap.Error(err))
	}
}

// Close закрывает файл
func (f *FileObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
