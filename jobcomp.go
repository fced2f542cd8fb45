// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

package jobcomp

import (
	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/client"
)

// Time-format flags accepted by Client.WriteJob and Criteria.TimeFormat.
const (
	TimeFormatEpoch   = wire.TimeFormatEpoch
	TimeFormatISO8601 = wire.TimeFormatISO8601
)

// Client is the controller-side handle to the store. See pkg/client
// for the implementation.
type Client = client.Client

// Option configures a Client at construction time.
type Option = client.Option

// Criteria is a submitted query bundle: a time window, optional
// node-count bounds, and optional set-membership filters.
type Criteria = client.Criteria

// New constructs a Client from opts. The store connection is
// established lazily on first use.
func New(opts ...Option) (*Client, error) {
	return client.New(opts...)
}

// Re-exported option constructors, so callers need only import this
// package and pkg/record for common usage.
var (
	WithAddr          = client.WithAddr
	WithPassword      = client.WithPassword
	WithDB            = client.WithDB
	WithLocation      = client.WithLocation
	WithTTLs          = client.WithTTLs
	WithFetchSizing   = client.WithFetchSizing
	WithIdentityCache = client.WithIdentityCache
	WithBackoff       = client.WithBackoff
	WithLogger        = client.WithLogger
)
