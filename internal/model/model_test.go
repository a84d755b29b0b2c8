package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMapping_IsExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{name: "без срока", expiresAt: nil, want: false},
		{name: "срок в будущем", expiresAt: &future, want: false},
		{name: "срок в прошлом", expiresAt: &past, want: true},
		{name: "ровно на границе", expiresAt: &now, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Mapping{Alias: "dev", OriginalURL: "https://example.com", ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, m.IsExpired(now))
		})
	}
}
