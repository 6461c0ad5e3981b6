package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolOptions_WithDefaults(t *testing.T) {
	tests := []struct {
		name string
		in   PoolOptions
		want PoolOptions
	}{
		{"zero value", PoolOptions{}, DefaultPoolOptions()},
		{"kept", PoolOptions{MaxConns: 4, MinConns: 1, ConnectTimeout: time.Second}, PoolOptions{MaxConns: 4, MinConns: 1, ConnectTimeout: time.Second}},
		{"zero min", PoolOptions{MaxConns: 10}, PoolOptions{MaxConns: 10, MinConns: 5, ConnectTimeout: 10 * time.Second}},
		{"small max caps default min", PoolOptions{MaxConns: 1}, PoolOptions{MaxConns: 1, MinConns: 1, ConnectTimeout: 10 * time.Second}},
		{"min above max", PoolOptions{MaxConns: 2, MinConns: 8}, PoolOptions{MaxConns: 2, MinConns: 2, ConnectTimeout: 10 * time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.withDefaults())
		})
	}
}
