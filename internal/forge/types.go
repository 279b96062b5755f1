// Package forge implements the GitHub-facing half of the reconciliation
// engine: classifying remotes, checking and creating repositories and
// branches, and validating credentials, ahead of any local git operation.
package forge

import "time"

// Visibility mirrors planfile.Visibility but is scoped to what create_repo
// actually accepts, to avoid forge depending on planfile's parse-time types.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// OwnerKind discriminates a GitHub owner login between a user account and an
// organization, since repo creation hits different API endpoints for each
// (spec §4.1 classify_owner). OwnerUnknown is returned when the user-info
// response carries no usable type field; the Reconciler logs and skips
// repo creation for that owner rather than guessing.
type OwnerKind string

const (
	OwnerUser    OwnerKind = "user"
	OwnerOrg     OwnerKind = "organization"
	OwnerUnknown OwnerKind = "unknown"
)

// RateLimitStatus mirrors the subset of ratelimit.Limiter state callers need
// to report in verbose/debug output.
type RateLimitStatus struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// AuthMode describes how credentials were sourced, for logging.
type AuthMode string

const (
	AuthModeEnvToken        AuthMode = "env-token"
	AuthModeCredentialStore AuthMode = "credential-store"
	AuthModeNone            AuthMode = "none"
)
