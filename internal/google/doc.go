// Package google builds the authenticated Google API session used by the
// Sheets client facade.
//
// A Session bundles the Sheets and Drive service handles created from a
// single service account credential. It is constructed once at startup,
// is immutable afterwards, and is safe for concurrent use, so both the
// stdio and HTTP transports can share one instance.
//
// Credentials are resolved in order: an explicit key file path, an inline
// base64-encoded key (CREDENTIALS_CONFIG), then Application Default
// Credentials.
package google
