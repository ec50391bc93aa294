package service

import (
	"log/slog"

	apperrors "github.com/rebelpost/rebelpost-server/internal/errors"
	"github.com/rebelpost/rebelpost-server/internal/passkey"
)

// PasskeyService wraps passkey generation and inspection. Stateless:
// the server never stores a passkey, only digests ever reach the
// ledger.
type PasskeyService struct {
	logger *slog.Logger
}

// NewPasskeyService creates a new passkey service.
func NewPasskeyService(logger *slog.Logger) *PasskeyService {
	return &PasskeyService{logger: logger}
}

// GeneratedPasskey is a freshly minted passkey with its derived
// identity and strength estimate.
type GeneratedPasskey struct {
	Passkey  string           `json:"passkey"`
	UserKey  string           `json:"user_key"`
	Strength passkey.Strength `json:"strength"`
}

// Generate mints a new passkey.
func (s *PasskeyService) Generate() (*GeneratedPasskey, error) {
	pk, err := passkey.Generate()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "generate passkey")
	}

	return &GeneratedPasskey{
		Passkey:  pk,
		UserKey:  passkey.DeriveUserKey(pk),
		Strength: passkey.Estimate(pk),
	}, nil
}

// Inspection is the identity and strength of a caller-supplied passkey.
type Inspection struct {
	UserKey  string           `json:"user_key"`
	Strength passkey.Strength `json:"strength"`
}

// Inspect derives the user key and strength for a passkey without
// persisting anything.
func (s *PasskeyService) Inspect(pk string) (*Inspection, error) {
	if pk == "" {
		return nil, apperrors.Validation("passkey is required")
	}

	return &Inspection{
		UserKey:  passkey.DeriveUserKey(pk),
		Strength: passkey.Estimate(pk),
	}, nil
}
