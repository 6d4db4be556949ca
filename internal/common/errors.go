package common

import "errors"

// Sentinel errors of the tenancy core. All of them are expected, recoverable
// outcomes the HTTP layer must translate explicitly.
var (
	// ErrNotFound covers both genuinely absent records and records that
	// belong to another tenant. The two cases are indistinguishable so that
	// no response can confirm a record's existence in a foreign tenant.
	ErrNotFound = errors.New("not found")

	// ErrCrossTenantWrite is returned when a write carries an explicit tenant
	// ID that conflicts with the tenant resolved from the request context.
	ErrCrossTenantWrite = errors.New("cross-tenant write")

	// ErrTenantMismatch is returned when an association (role grant, role
	// assignment) would span two different tenants.
	ErrTenantMismatch = errors.New("tenant mismatch")
)

// ValidatePaginationParams validates pagination parameters
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
