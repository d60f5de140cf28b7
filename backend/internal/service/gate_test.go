package service

import (
	"testing"

	"github.com/deskfolio/deskfolio/shared/domain"
	"github.com/stretchr/testify/assert"
)

func TestGate_Authorize(t *testing.T) {
	gate := NewGate([]domain.Email{"LuckyAlade309@gmail.com", "paulinjeti@gmail.com"})

	tests := []struct {
		email    string
		expected bool
	}{
		{"luckyalade309@gmail.com", true},
		{"LUCKYALADE309@gmail.com", true},
		{"PaulInJeti@Gmail.com", true},
		{" paulinjeti@gmail.com ", true},
		{"random@x.com", false},
		{"", false},
		{"luckyalade309@gmail.co", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.expected, gate.Authorize(domain.Identity{Email: tt.email}))
		})
	}
}

func TestGate_Empty(t *testing.T) {
	assert.False(t, NewGate(nil).Authorize(domain.Identity{Email: "luckyalade309@gmail.com"}))
}
