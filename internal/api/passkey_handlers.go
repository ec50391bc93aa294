package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerPasskeyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "generatePasskey",
		Method:      http.MethodPost,
		Path:        "/api/v1/passkeys",
		Summary:     "Generate passkey",
		Description: "Mints a new random passkey; the server stores nothing",
		Tags:        []string{"Passkeys"},
	}, s.handleGeneratePasskey)

	huma.Register(s.api, huma.Operation{
		OperationID: "inspectPasskey",
		Method:      http.MethodPost,
		Path:        "/api/v1/passkeys/inspect",
		Summary:     "Inspect passkey",
		Description: "Derives the user key and strength estimate for a passkey",
		Tags:        []string{"Passkeys"},
	}, s.handleInspectPasskey)
}

// === DTOs ===

// StrengthResponse contains a passkey strength estimate.
type StrengthResponse struct {
	Score       float64 `json:"score" doc:"Strength score 0-100"`
	EntropyBits float64 `json:"entropy_bits" doc:"Estimated entropy in bits"`
	CrackTime   string  `json:"crack_time" doc:"Human-readable crack time estimate"`
}

// GeneratePasskeyResponse contains a freshly minted passkey.
type GeneratePasskeyResponse struct {
	Passkey  string           `json:"passkey" doc:"The passkey; shown once, never stored"`
	UserKey  string           `json:"user_key" doc:"Digest identifying the user"`
	Strength StrengthResponse `json:"strength" doc:"Strength estimate"`
}

// GeneratePasskeyOutput wraps the generate response for Huma.
type GeneratePasskeyOutput struct {
	Body GeneratePasskeyResponse
}

// InspectPasskeyRequest is the request body for inspecting a passkey.
type InspectPasskeyRequest struct {
	Passkey string `json:"passkey" minLength:"1" doc:"Passkey to inspect"`
}

// InspectPasskeyInput wraps the inspect request for Huma.
type InspectPasskeyInput struct {
	Body InspectPasskeyRequest
}

// InspectPasskeyResponse contains the derived identity for a passkey.
type InspectPasskeyResponse struct {
	UserKey  string           `json:"user_key" doc:"Digest identifying the user"`
	Strength StrengthResponse `json:"strength" doc:"Strength estimate"`
}

// InspectPasskeyOutput wraps the inspect response for Huma.
type InspectPasskeyOutput struct {
	Body InspectPasskeyResponse
}

// === Handlers ===

func (s *Server) handleGeneratePasskey(_ context.Context, _ *struct{}) (*GeneratePasskeyOutput, error) {
	gen, err := s.services.Passkey.Generate()
	if err != nil {
		return nil, err
	}

	return &GeneratePasskeyOutput{
		Body: GeneratePasskeyResponse{
			Passkey: gen.Passkey,
			UserKey: gen.UserKey,
			Strength: StrengthResponse{
				Score:       gen.Strength.Score,
				EntropyBits: gen.Strength.EntropyBits,
				CrackTime:   gen.Strength.CrackTimeDisplay,
			},
		},
	}, nil
}

func (s *Server) handleInspectPasskey(_ context.Context, input *InspectPasskeyInput) (*InspectPasskeyOutput, error) {
	insp, err := s.services.Passkey.Inspect(input.Body.Passkey)
	if err != nil {
		return nil, err
	}

	return &InspectPasskeyOutput{
		Body: InspectPasskeyResponse{
			UserKey: insp.UserKey,
			Strength: StrengthResponse{
				Score:       insp.Strength.Score,
				EntropyBits: insp.Strength.EntropyBits,
				CrackTime:   insp.Strength.CrackTimeDisplay,
			},
		},
	}, nil
}
