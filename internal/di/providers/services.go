package providers

import (
	"github.com/samber/do/v2"

	"github.com/rebelpost/rebelpost-server/internal/config"
	"github.com/rebelpost/rebelpost-server/internal/ledger"
	"github.com/rebelpost/rebelpost-server/internal/logger"
	"github.com/rebelpost/rebelpost-server/internal/ratelimit"
	"github.com/rebelpost/rebelpost-server/internal/service"
)

// PostLimiter is the per-user-key rate limiter for post submissions.
type PostLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *PostLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// VoteLimiter is the per-user-key rate limiter for vote submissions.
type VoteLimiter struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (l *VoteLimiter) Shutdown() error {
	l.Stop()
	return nil
}

// ProvidePostLimiter provides the post submission rate limiter.
func ProvidePostLimiter(i do.Injector) (*PostLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &PostLimiter{
		KeyedRateLimiter: ratelimit.New(ratelimit.PerMinute(cfg.RateLimit.PostsPerMinute), cfg.RateLimit.Burst),
	}, nil
}

// ProvideVoteLimiter provides the vote submission rate limiter.
func ProvideVoteLimiter(i do.Injector) (*VoteLimiter, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return &VoteLimiter{
		KeyedRateLimiter: ratelimit.New(ratelimit.PerMinute(cfg.RateLimit.VotesPerMinute), cfg.RateLimit.Burst),
	}, nil
}

// ProvidePostService provides the post service.
func ProvidePostService(i do.Injector) (*service.PostService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	led := do.MustInvoke[*ledger.Ledger](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	limiter := do.MustInvoke[*PostLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPostService(storeHandle.Store, led, searchService, sseHandle.Manager, limiter.KeyedRateLimiter, log.Logger), nil
}

// ProvideVoteService provides the vote service.
func ProvideVoteService(i do.Injector) (*service.VoteService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	led := do.MustInvoke[*ledger.Ledger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	limiter := do.MustInvoke[*VoteLimiter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVoteService(storeHandle.Store, led, sseHandle.Manager, limiter.KeyedRateLimiter, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, log.Logger), nil
}

// ProvideHashtagService provides the hashtag service.
func ProvideHashtagService(i do.Injector) (*service.HashtagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHashtagService(storeHandle.Store, log.Logger), nil
}

// ProvidePasskeyService provides the passkey service.
func ProvidePasskeyService(i do.Injector) (*service.PasskeyService, error) {
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPasskeyService(log.Logger), nil
}
