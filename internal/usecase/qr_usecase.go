package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ScanCredentialOutput describes a freshly issued scan credential. QRData is
// the signed token string clients embed in a QR code themselves; ID echoes
// the token's jti.
type ScanCredentialOutput struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	QRData    string
	ExpiresAt time.Time
}

// QRUsecase issues the short-lived scan credentials students present at
// checkpoints.
type QRUsecase interface {
	// GenerateScanCredential issues a new scan token bound to the caller's
	// session. Tokens are valid for a fixed short window; clients refresh
	// by calling again.
	GenerateScanCredential(ctx context.Context, userID uuid.UUID, sessionID string) (*ScanCredentialOutput, error)

	// RenderScanCredentialPNG issues a scan token and renders it as a QR
	// code PNG of the given pixel size, for clients without a QR library.
	RenderScanCredentialPNG(ctx context.Context, userID uuid.UUID, sessionID string, size int) ([]byte, *ScanCredentialOutput, error)
}
