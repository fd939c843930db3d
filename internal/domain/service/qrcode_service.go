package service

// QRCodeService defines the interface for QR code image generation
type QRCodeService interface {
	// RenderPNG encodes the given payload as a QR code PNG of the given
	// pixel size.
	RenderPNG(payload string, size int) ([]byte, error)
}
