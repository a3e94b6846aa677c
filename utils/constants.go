package utils

import (
	"time"
)

// ContextKey is the type used for request metadata threaded from
// handlers into flows
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// DeviceRegistrationTTL is the validity window of a PWA device
	// registration token (5 minutes)
	DeviceRegistrationTTL = 5 * time.Minute
)

// Redis key fragments
const (
	// OwnerLockKeyPrefix prefixes the per-owner mutation lock key,
	// completed with the owner id
	OwnerLockKeyPrefix = "owner_lock"

	// DistributionStateCachePrefix prefixes the cached distribution
	// state snapshot key, completed with the owner id
	DistributionStateCachePrefix = "distribution_state"

	// OwnerLockTTL bounds how long a crashed request can hold an owner lock
	OwnerLockTTL = 10 * time.Second

	// DistributionStateCacheTTL bounds staleness of the cached
	// distribution state snapshot
	DistributionStateCacheTTL = 30 * time.Second
)

// History and pagination constants
const (
	// DeliveryHistoryLimit is the number of records returned by the
	// dashboard history endpoint
	DeliveryHistoryLimit = 20
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
