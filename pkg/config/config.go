// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds process-start configuration: store connection parameters,
// per-key-family TTLs, fetch pagination limits, and identity-cache sizing.
type Config struct {
	// StoreAddr is the host:port of the backing Redis-compatible server.
	StoreAddr string

	// StorePassword authenticates to the store, if non-empty.
	StorePassword string

	// StoreDB selects the logical database index.
	StoreDB int

	// Location, combined with the fixed "job" segment, forms the key
	// namespace prefix: "job" when empty, "<location>:job" otherwise.
	Location string

	// TJob, TIdx, TQry are per-key-family TTLs in seconds; 0 disables
	// expiration on that family.
	TJob int64
	TIdx int64
	TQry int64

	// FetchCount is the ZPOPMIN chunk size per FETCH iteration.
	FetchCount int64
	// FetchLimit caps the max a single FETCH call will honor.
	FetchLimit int64

	// IDCacheSize is the identity cache's fixed bucket count.
	IDCacheSize int
	// IDCacheTTL is how long a cached uid/gid->name entry stays valid.
	IDCacheTTL time.Duration

	// ABI is the configured slot catalogue version. It is loaded and
	// validated here only; the codec and store-side verbs stamp and check
	// wire.DefaultABI regardless of this value.
	ABI int

	// AdminListenAddr is the address for the /healthz and /metrics HTTP
	// surface (pkg/adminserver). It is loaded here only; nothing in this
	// module starts a server from it.
	AdminListenAddr string

	// Debug is the verbose-logging flag. It is loaded here only; no logger
	// in this module reads it.
	Debug bool
}

// NewDefault returns a Config with the defaults named in the wire
// contract, overridable via environment variables through Load.
func NewDefault() *Config {
	return &Config{
		StoreAddr:       getEnvOrDefault("JOBCOMP_STORE_ADDR", "localhost:6379"),
		StorePassword:   os.Getenv("JOBCOMP_STORE_PASSWORD"),
		StoreDB:         getEnvIntOrDefault("JOBCOMP_STORE_DB", 0),
		Location:        os.Getenv("JOBCOMP_LOCATION"),
		TJob:            getEnvInt64OrDefault("JOBCOMP_T_JOB", 0),
		TIdx:            getEnvInt64OrDefault("JOBCOMP_T_IDX", 172800),
		TQry:            getEnvInt64OrDefault("JOBCOMP_T_QRY", 300),
		FetchCount:      getEnvInt64OrDefault("JOBCOMP_FETCH_COUNT", 100),
		FetchLimit:      getEnvInt64OrDefault("JOBCOMP_FETCH_LIMIT", 500),
		IDCacheSize:     getEnvIntOrDefault("JOBCOMP_ID_CACHE_SIZE", 4096),
		IDCacheTTL:      getEnvDurationOrDefault("JOBCOMP_ID_CACHE_TTL", 10*time.Minute),
		ABI:             getEnvIntOrDefault("JOBCOMP_ABI", 28),
		AdminListenAddr: os.Getenv("JOBCOMP_ADMIN_LISTEN_ADDR"),
		Debug:           getEnvBoolOrDefault("JOBCOMP_DEBUG", false),
	}
}

// Load re-reads environment variables into c, overriding any field whose
// corresponding variable is set.
func (c *Config) Load() {
	if v := os.Getenv("JOBCOMP_STORE_ADDR"); v != "" {
		c.StoreAddr = v
	}
	if v := os.Getenv("JOBCOMP_STORE_PASSWORD"); v != "" {
		c.StorePassword = v
	}
	c.StoreDB = getEnvIntOrDefault("JOBCOMP_STORE_DB", c.StoreDB)
	if v := os.Getenv("JOBCOMP_LOCATION"); v != "" {
		c.Location = v
	}
	c.TJob = getEnvInt64OrDefault("JOBCOMP_T_JOB", c.TJob)
	c.TIdx = getEnvInt64OrDefault("JOBCOMP_T_IDX", c.TIdx)
	c.TQry = getEnvInt64OrDefault("JOBCOMP_T_QRY", c.TQry)
	c.FetchCount = getEnvInt64OrDefault("JOBCOMP_FETCH_COUNT", c.FetchCount)
	c.FetchLimit = getEnvInt64OrDefault("JOBCOMP_FETCH_LIMIT", c.FetchLimit)
	c.IDCacheSize = getEnvIntOrDefault("JOBCOMP_ID_CACHE_SIZE", c.IDCacheSize)
	c.IDCacheTTL = getEnvDurationOrDefault("JOBCOMP_ID_CACHE_TTL", c.IDCacheTTL)
	c.ABI = getEnvIntOrDefault("JOBCOMP_ABI", c.ABI)
	if v := os.Getenv("JOBCOMP_ADMIN_LISTEN_ADDR"); v != "" {
		c.AdminListenAddr = v
	}
	c.Debug = getEnvBoolOrDefault("JOBCOMP_DEBUG", c.Debug)
}

// Validate checks invariants a malformed environment could violate.
func (c *Config) Validate() error {
	if c.StoreAddr == "" {
		return ErrMissingStoreAddr
	}
	if c.FetchCount <= 0 {
		return ErrInvalidFetchCount
	}
	if c.FetchLimit <= 0 {
		return ErrInvalidFetchLimit
	}
	if c.IDCacheSize <= 0 {
		return ErrInvalidIDCacheSize
	}
	if c.ABI <= 0 {
		return ErrInvalidABI
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
