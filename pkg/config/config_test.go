// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	c := NewDefault()
	require.NotNil(t, c)

	assert.Equal(t, "localhost:6379", c.StoreAddr)
	assert.Equal(t, int64(300), c.TQry)
	assert.Equal(t, int64(100), c.FetchCount)
	assert.Equal(t, int64(500), c.FetchLimit)
	assert.Equal(t, 28, c.ABI)
	assert.False(t, c.Debug)
}

func TestConfigLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*testing.T, *Config)
	}{
		{
			name:    "store addr from environment",
			envVars: map[string]string{"JOBCOMP_STORE_ADDR": "redis.example.com:6379"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "redis.example.com:6379", c.StoreAddr)
			},
		},
		{
			name:    "fetch count from environment",
			envVars: map[string]string{"JOBCOMP_FETCH_COUNT": "250"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, int64(250), c.FetchCount)
			},
		},
		{
			name:    "id cache ttl from environment",
			envVars: map[string]string{"JOBCOMP_ID_CACHE_TTL": "1m"},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, time.Minute, c.IDCacheTTL)
			},
		},
		{
			name:    "debug from environment",
			envVars: map[string]string{"JOBCOMP_DEBUG": "true"},
			expected: func(t *testing.T, c *Config) {
				assert.True(t, c.Debug)
			},
		},
		{
			name: "location from environment changes prefix input",
			envVars: map[string]string{
				"JOBCOMP_LOCATION": "cluster1",
			},
			expected: func(t *testing.T, c *Config) {
				assert.Equal(t, "cluster1", c.Location)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}
			c := NewDefault()
			c.Load()
			tt.expected(t, c)
		})
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectedErr error
	}{
		{
			name:        "valid config",
			config:      &Config{StoreAddr: "localhost:6379", FetchCount: 1, FetchLimit: 1, IDCacheSize: 1, ABI: 28},
			expectedErr: nil,
		},
		{
			name:        "missing store addr",
			config:      &Config{FetchCount: 1, FetchLimit: 1, IDCacheSize: 1, ABI: 28},
			expectedErr: ErrMissingStoreAddr,
		},
		{
			name:        "invalid fetch count",
			config:      &Config{StoreAddr: "x", FetchCount: 0, FetchLimit: 1, IDCacheSize: 1, ABI: 28},
			expectedErr: ErrInvalidFetchCount,
		},
		{
			name:        "invalid fetch limit",
			config:      &Config{StoreAddr: "x", FetchCount: 1, FetchLimit: 0, IDCacheSize: 1, ABI: 28},
			expectedErr: ErrInvalidFetchLimit,
		},
		{
			name:        "invalid id cache size",
			config:      &Config{StoreAddr: "x", FetchCount: 1, FetchLimit: 1, IDCacheSize: 0, ABI: 28},
			expectedErr: ErrInvalidIDCacheSize,
		},
		{
			name:        "invalid abi",
			config:      &Config{StoreAddr: "x", FetchCount: 1, FetchLimit: 1, IDCacheSize: 1, ABI: 0},
			expectedErr: ErrInvalidABI,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
