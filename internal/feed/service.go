package feed

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/connectly/backend/internal/cache"
	"github.com/connectly/backend/internal/logger"
	"github.com/connectly/backend/internal/metrics"
	"github.com/connectly/backend/internal/models"
)

// Service produces feed pages and keeps the page cache coherent with
// write traffic. Cache failures are never fatal: a broken backend just
// means every page is recomputed from the store.
type Service struct {
	db    *gorm.DB
	cache cache.Cache
	ttl   time.Duration
}

// NewService builds a feed service. c may be nil to disable caching;
// ttl <= 0 falls back to the cache package default.
func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration) *Service {
	return &Service{db: db, cache: c, ttl: ttl}
}

// Page returns one marshaled feed page. The cached value is the exact
// byte payload that was served when it was populated, so a hit is
// byte-identical to the response that warmed it. Out-of-range pages
// clamp to 1 during compute and cache under the requested key; the
// entry serves the same clamped content until invalidated.
func (s *Service) Page(ctx context.Context, kind Kind, userID string, requestURL *url.URL) ([]byte, error) {
	params := ParsePageParams(requestURL.Query())
	key := Key(kind, userID, params.Page, params.Size)

	start := time.Now()
	payload, hit, err := cache.GetOrCompute(ctx, s.cache, string(kind), key, s.ttl, func(ctx context.Context) (string, error) {
		env, err := s.compute(ctx, kind, userID, params, requestURL)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(env)
		if err != nil {
			return "", err
		}
		return string(b), nil
	})
	if err != nil {
		return nil, err
	}

	source := "store"
	if hit {
		source = "cache"
	}
	metrics.RecordFeedPage(string(kind), source, time.Since(start))
	return []byte(payload), nil
}

// compute runs the store queries: count for pagination, then the
// annotated page fetch.
func (s *Service) compute(ctx context.Context, kind Kind, userID string, params PageParams, requestURL *url.URL) (Envelope, error) {
	var count int64
	if err := s.filter(ctx, kind, userID).Count(&count).Error; err != nil {
		return Envelope{}, err
	}

	params.Page = ClampPage(params.Page, TotalPages(count, params.Size))

	var posts []models.Post
	err := s.filter(ctx, kind, userID).
		Select(`posts.*,
			(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count,
			(SELECT users.username FROM users WHERE users.id = posts.author_id) AS author_username`).
		Order("posts.created_at DESC, posts.id DESC").
		Limit(params.Size).
		Offset((params.Page - 1) * params.Size).
		Find(&posts).Error
	if err != nil {
		return Envelope{}, err
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return BuildEnvelope(requestURL, params, count, posts), nil
}

// filter builds the visibility filter for one feed kind. Queries mutate
// in gorm, so callers get a fresh builder every time.
func (s *Service) filter(ctx context.Context, kind Kind, userID string) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Post{})

	switch kind {
	case KindNewsfeed:
		// Own posts at any privacy, plus followed authors' public and
		// followers-only posts. Followed authors' private posts stay hidden.
		followed := s.db.Model(&models.Follow{}).
			Select("followed_id").
			Where("follower_id = ?", userID)
		return q.Where("posts.author_id = ? OR (posts.privacy IN ? AND posts.author_id IN (?))",
			userID,
			[]models.Privacy{models.PrivacyPublic, models.PrivacyFollowers},
			followed,
		)
	default:
		return q.Where("posts.privacy = ? OR posts.author_id = ?", models.PrivacyPublic, userID)
	}
}

// InvalidatePostWrite drops cached pages for the author and every
// follower after a post is created or deleted. The fan-out is O(N) in
// followers; acceptable at this scale and recorded as a metric.
func (s *Service) InvalidatePostWrite(ctx context.Context, authorID string) {
	var followerIDs []string
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", authorID).
		Pluck("follower_id", &followerIDs).Error; err != nil {
		logger.Log.Warn("Follower fan-out query failed, invalidating author only",
			logger.WithUserID(authorID),
			zap.Error(err),
		)
		followerIDs = nil
	}

	s.invalidateUsers(ctx, append(followerIDs, authorID), KindGlobal, KindNewsfeed)
	metrics.RecordFeedInvalidation("post_write")
}

// InvalidateEngagement drops cached pages for the acting user and the
// post author after a like or comment changes visible counts.
func (s *Service) InvalidateEngagement(ctx context.Context, actorID, authorID string) {
	ids := []string{actorID}
	if authorID != "" && authorID != actorID {
		ids = append(ids, authorID)
	}
	s.invalidateUsers(ctx, ids, KindGlobal, KindNewsfeed)
	metrics.RecordFeedInvalidation("engagement")
}

// InvalidateFollowChange drops the follower's newsfeed pages; the
// global feed does not depend on follow edges.
func (s *Service) InvalidateFollowChange(ctx context.Context, followerID string) {
	s.invalidateUsers(ctx, []string{followerID}, KindNewsfeed)
	metrics.RecordFeedInvalidation("follow_change")
}

func (s *Service) invalidateUsers(ctx context.Context, userIDs []string, kinds ...Kind) {
	if s.cache == nil {
		return
	}
	for _, id := range userIDs {
		for _, k := range kinds {
			if err := s.cache.DeletePattern(ctx, UserPattern(k, id)); err != nil {
				// Backend without pattern delete: drop the hottest page.
				if derr := s.cache.Delete(ctx, Key(k, id, 1, DefaultPageSize)); derr != nil {
					logger.Log.Warn("Feed cache invalidation failed",
						logger.WithUserID(id),
						zap.String("feed", string(k)),
						zap.Error(derr),
					)
				}
			}
		}
	}
}
