package impl

import (
	"context"
	"log/slog"

	deliverycontext "trackivity/internal/delivery/context"
	domainerrors "trackivity/internal/domain/errors"
	"trackivity/internal/domain/service"
	"trackivity/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// qrService implements the QRUsecase interface.
type qrService struct {
	tokenService  service.TokenService
	qrcodeService service.QRCodeService
	logger        *slog.Logger
}

// QRServiceParams holds dependencies for qrService, injected by Fx.
type QRServiceParams struct {
	fx.In

	TokenService  service.TokenService
	QRCodeService service.QRCodeService
	Logger        *slog.Logger
}

// NewQRService is the constructor for qrService.
func NewQRService(params QRServiceParams) usecase.QRUsecase {
	return &qrService{
		tokenService:  params.TokenService,
		qrcodeService: params.QRCodeService,
		logger:        params.Logger,
	}
}

func (srv *qrService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GenerateScanCredential issues a new scan token bound to the caller's session.
func (srv *qrService) GenerateScanCredential(ctx context.Context, userID uuid.UUID, sessionID string) (*usecase.ScanCredentialOutput, error) {
	token, expiresAt, err := srv.tokenService.GenerateScanToken(userID, sessionID)
	if err != nil {
		srv.log(ctx).Error("Failed to generate scan token", slog.Any("userID", userID), slog.Any("error", err))

		return nil, errors.Wrap(err, "generate scan token")
	}

	// The token's own jti identifies this issuance; surface it to clients
	// so scans can be correlated back to a generation event.
	claims, err := srv.tokenService.ValidateScanToken(token)
	if err != nil {
		return nil, errors.Wrap(err, "read back scan token")
	}

	credentialID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, errors.Wrap(err, "parse scan token id")
	}

	srv.log(ctx).Debug("Scan credential issued", slog.Any("userID", userID), slog.Any("credentialID", credentialID))

	return &usecase.ScanCredentialOutput{
		ID:        credentialID,
		UserID:    userID,
		QRData:    token,
		ExpiresAt: expiresAt,
	}, nil
}

// RenderScanCredentialPNG issues a scan token and renders it as a PNG.
func (srv *qrService) RenderScanCredentialPNG(ctx context.Context, userID uuid.UUID, sessionID string, size int) ([]byte, *usecase.ScanCredentialOutput, error) {
	credential, err := srv.GenerateScanCredential(ctx, userID, sessionID)
	if err != nil {
		return nil, nil, err
	}

	png, err := srv.qrcodeService.RenderPNG(credential.QRData, size)
	if err != nil {
		srv.log(ctx).Error("Failed to render scan credential", slog.Any("userID", userID), slog.Any("error", err))

		return nil, nil, domainerrors.ErrInternalServer.WrapMessage("render scan credential image")
	}

	return png, credential, nil
}
