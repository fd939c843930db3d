package qrcode

import (
	"fmt"

	"trackivity/internal/domain/service"

	"github.com/skip2/go-qrcode"
)

const defaultSize = 256

type qrcodeService struct {
	defaultSize          int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// NewQRCodeService creates a new QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.QRCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = defaultSize
	}

	return &qrcodeService{
		defaultSize:          size,
		errorCorrectionLevel: level,
	}
}

// RenderPNG encodes the payload as a QR code PNG. A non-positive size falls
// back to the configured default.
func (s *qrcodeService) RenderPNG(payload string, size int) ([]byte, error) {
	if payload == "" {
		return nil, fmt.Errorf("empty QR code payload")
	}
	if size <= 0 {
		size = s.defaultSize
	}

	qrCode, err := qrcode.New(payload, s.errorCorrectionLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	pngBytes, err := qrCode.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}

	return pngBytes, nil
}
