package api

import (
	"github.com/rebelpost/rebelpost-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Post    *service.PostService
	Vote    *service.VoteService
	Profile *service.ProfileService
	Hashtag *service.HashtagService
	Passkey *service.PasskeyService
	Search  *service.SearchService
}
