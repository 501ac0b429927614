package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"
)

// Environment variables consulted when no explicit configuration is given.
const (
	// EnvServiceAccountPath points at a service account key file.
	EnvServiceAccountPath = "SERVICE_ACCOUNT_PATH"

	// EnvCredentialsConfig holds a base64-encoded service account key,
	// for deployments where mounting a file is inconvenient.
	EnvCredentialsConfig = "CREDENTIALS_CONFIG"

	// EnvDriveFolderID scopes spreadsheet creation and listing to a folder.
	EnvDriveFolderID = "DRIVE_FOLDER_ID"
)

// SessionConfig controls how the Google API session is authenticated.
type SessionConfig struct {
	// ServiceAccountPath is the path to a service account JSON key file.
	ServiceAccountPath string

	// CredentialsJSON is a raw service account key. Takes effect only when
	// ServiceAccountPath is empty.
	CredentialsJSON []byte

	// FolderID is an optional Drive folder that scopes spreadsheet
	// creation and listing. The folder must be shared with the service
	// account.
	FolderID string
}

// ConfigFromEnv builds a SessionConfig from the environment.
// CREDENTIALS_CONFIG is decoded from base64; a malformed value is an error
// rather than a silent fallback to default credentials.
func ConfigFromEnv() (SessionConfig, error) {
	cfg := SessionConfig{
		ServiceAccountPath: os.Getenv(EnvServiceAccountPath),
		FolderID:           os.Getenv(EnvDriveFolderID),
	}

	if encoded := os.Getenv(EnvCredentialsConfig); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return SessionConfig{}, fmt.Errorf("invalid %s (must be base64-encoded JSON): %w", EnvCredentialsConfig, err)
		}
		cfg.CredentialsJSON = decoded
	}

	return cfg, nil
}

// Session bundles the authenticated Sheets and Drive service handles.
// Immutable after construction and safe for concurrent use.
type Session struct {
	sheets   *sheets.Service
	drive    *drive.Service
	folderID string
}

// NewSession creates the Sheets and Drive services from the configured
// credential source.
func NewSession(ctx context.Context, cfg SessionConfig) (*Session, error) {
	opts, err := clientOptions(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sheets service: %w", err)
	}

	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Session{
		sheets:   sheetsService,
		drive:    driveService,
		folderID: cfg.FolderID,
	}, nil
}

// NewSessionFromServices wraps pre-built service handles. Intended for
// tests that point the services at a fake HTTP backend.
func NewSessionFromServices(sheetsService *sheets.Service, driveService *drive.Service, folderID string) *Session {
	return &Session{
		sheets:   sheetsService,
		drive:    driveService,
		folderID: folderID,
	}
}

func clientOptions(ctx context.Context, cfg SessionConfig) ([]option.ClientOption, error) {
	scopes := DefaultScopes

	switch {
	case cfg.ServiceAccountPath != "":
		if _, err := os.Stat(cfg.ServiceAccountPath); err != nil {
			return nil, fmt.Errorf("service account key file not accessible: %w", err)
		}
		return []option.ClientOption{
			option.WithCredentialsFile(cfg.ServiceAccountPath),
			option.WithScopes(scopes...),
		}, nil

	case len(cfg.CredentialsJSON) > 0:
		creds, err := google.CredentialsFromJSON(ctx, cfg.CredentialsJSON, scopes...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
		}
		return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil

	default:
		// Application Default Credentials (GOOGLE_APPLICATION_CREDENTIALS
		// or workload identity).
		creds, err := google.FindDefaultCredentials(ctx, scopes...)
		if err != nil {
			return nil, fmt.Errorf("no Google credentials configured: set %s or %s: %w",
				EnvServiceAccountPath, EnvCredentialsConfig, err)
		}
		return []option.ClientOption{option.WithTokenSource(creds.TokenSource)}, nil
	}
}

// Sheets returns the Sheets service handle.
func (s *Session) Sheets() *sheets.Service {
	return s.sheets
}

// Drive returns the Drive service handle.
func (s *Session) Drive() *drive.Service {
	return s.drive
}

// FolderID returns the configured Drive folder scope, or "" when unset.
func (s *Session) FolderID() string {
	return s.folderID
}
