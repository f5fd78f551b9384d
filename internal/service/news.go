package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"impact-service/internal/cache"
	"impact-service/internal/news"
	"impact-service/internal/repository"
	"impact-service/pkg/logger"
	"impact-service/prometheus"
)

// NewsService serves the tenant news feed through a read-through cache.
// The provider is slow and rate limited, so one fetch per tenant per TTL
// window is the budget; a provider failure degrades to an empty feed
// rather than an error.
type NewsService struct {
	tenants  repository.TenantRepository
	provider news.Provider
	cache    cache.Cache
	ttl      time.Duration
}

func NewNewsService(tenants repository.TenantRepository, provider news.Provider, c cache.Cache, ttl time.Duration) *NewsService {
	return &NewsService{tenants: tenants, provider: provider, cache: c, ttl: ttl}
}

func newsFeedKey(tenantID uuid.UUID) string {
	return fmt.Sprintf("news_feed_%s", tenantID)
}

// Feed returns the tenant's news feed, fetching from the provider only
// on a cache miss. The returned slice is never nil.
func (s *NewsService) Feed(ctx context.Context, tenantID uuid.UUID) ([]news.Article, error) {
	key := newsFeedKey(tenantID)
	if data, ok := s.cache.Get(key); ok {
		prometheus.NewsCacheCounter.WithLabelValues("hit").Inc()
		var articles []news.Article
		if err := json.Unmarshal(data, &articles); err == nil {
			return articles, nil
		}
		// Unreadable entries fall through to a fresh fetch
		s.cache.Delete(key)
	}
	prometheus.NewsCacheCounter.WithLabelValues("miss").Inc()

	tenant, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, translateRepoErr(err)
	}

	articles, err := s.provider.Search(ctx, tenant.PrimaryLocation, tenant.NewsTopics)
	if err != nil {
		logger.FromContext(ctx).Error("news provider search failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
		return []news.Article{}, nil
	}
	if articles == nil {
		articles = []news.Article{}
	}

	if data, err := json.Marshal(articles); err == nil {
		s.cache.Set(key, data, s.ttl)
	}
	return articles, nil
}
