package readmodel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keywinf/relay-stack/relay/internal/metrics"
)

// RoleClient is the HTTP implementation of RoleResolver against the user
// directory.
type RoleClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRoleClient creates a role resolver client for the given directory base URL.
func NewRoleClient(baseURL string) *RoleClient {
	return &RoleClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FindUsersWithRole returns the ids of users holding the given role.
func (c *RoleClient) FindUsersWithRole(ctx context.Context, role string) ([]string, error) {
	u := c.baseURL + "/api/v1/users?role=" + url.QueryEscape(role)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("readmodel: find users with role %s: %w", role, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("readmodel: find users with role %s: %d - %s", role, resp.StatusCode, string(body))
	}

	var out struct {
		UserIDs []string `json:"user_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("readmodel: decode role lookup: %w", err)
	}
	return out.UserIDs, nil
}

// CachedRoleResolver caches role lookups in Redis with a short TTL. The
// admin set is requested by a large share of events, and it changes rarely.
// Cache failures fall through to the upstream resolver.
type CachedRoleResolver struct {
	upstream RoleResolver
	redis    *redis.Client
	ttl      time.Duration
	logger   *slog.Logger
}

// NewCachedRoleResolver wraps upstream with a Redis cache.
func NewCachedRoleResolver(upstream RoleResolver, redisClient *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRoleResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRoleResolver{
		upstream: upstream,
		redis:    redisClient,
		ttl:      ttl,
		logger:   logger,
	}
}

func (r *CachedRoleResolver) cacheKey(role string) string {
	return "relay:roles:" + role
}

// FindUsersWithRole returns the cached id set for role, falling back to the
// upstream resolver on miss or cache error.
func (r *CachedRoleResolver) FindUsersWithRole(ctx context.Context, role string) ([]string, error) {
	key := r.cacheKey(role)

	data, err := r.redis.Get(ctx, key).Result()
	if err == nil {
		var ids []string
		if err := json.Unmarshal([]byte(data), &ids); err == nil {
			metrics.RoleCacheHits.Inc()
			return ids, nil
		}
		// Corrupt entry: treat as miss and overwrite below
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("role cache read failed, querying upstream",
			slog.String("role", role),
			slog.String("error", err.Error()))
	}
	metrics.RoleCacheMisses.Inc()

	ids, err := r.upstream.FindUsersWithRole(ctx, role)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(ids); err == nil {
		if err := r.redis.Set(ctx, key, encoded, r.ttl).Err(); err != nil {
			r.logger.Warn("role cache write failed",
				slog.String("role", role),
				slog.String("error", err.Error()))
		}
	}

	return ids, nil
}
