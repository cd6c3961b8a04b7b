// Package cache adds a read-through redis layer in front of the taxonomy
// store's name lookups. The taxonomy is near-immutable, so cached names get
// a long TTL and the whole namespace is invalidated on reseed. Cache errors
// degrade to store reads; they never fail a lookup.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"vecinal/internal/location/models"
	"vecinal/internal/location/store"
	platformredis "vecinal/internal/platform/redis"
)

const keyPrefix = "loc:"

// Store decorates a taxonomy store. Everything but the name lookups and
// ReplaceAll passes straight through.
type Store struct {
	store.Store
	redis  *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Wrap returns the inner store untouched when redis is not configured.
func Wrap(inner store.Store, client *platformredis.Client, ttl time.Duration, logger *slog.Logger) store.Store {
	if client == nil {
		return inner
	}
	return &Store{Store: inner, redis: client, ttl: ttl, logger: logger}
}

func (s *Store) DepartmentName(ctx context.Context, code int) (string, error) {
	return s.nameThrough(ctx, "department", code, s.Store.DepartmentName)
}

func (s *Store) ProvinceName(ctx context.Context, code int) (string, error) {
	return s.nameThrough(ctx, "province", code, s.Store.ProvinceName)
}

func (s *Store) MunicipalityName(ctx context.Context, code int) (string, error) {
	return s.nameThrough(ctx, "municipality", code, s.Store.MunicipalityName)
}

func (s *Store) DepartmentNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesThrough(ctx, "department", codes, s.Store.DepartmentNames)
}

func (s *Store) ProvinceNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesThrough(ctx, "province", codes, s.Store.ProvinceNames)
}

func (s *Store) MunicipalityNames(ctx context.Context, codes []int) (map[int]string, error) {
	return s.namesThrough(ctx, "municipality", codes, s.Store.MunicipalityNames)
}

// ReplaceAll reseeds the inner store, then invalidates every cached name so
// readers never serve names from the previous seed.
func (s *Store) ReplaceAll(ctx context.Context, departments []*models.Department, provinces []*models.Province, municipalities []*models.Municipality) error {
	if err := s.Store.ReplaceAll(ctx, departments, provinces, municipalities); err != nil {
		return err
	}
	s.Invalidate(ctx)
	return nil
}

func (s *Store) nameThrough(ctx context.Context, level string, code int, load func(context.Context, int) (string, error)) (string, error) {
	key := cacheKey(level, code)
	cached, err := s.redis.Get(ctx, key).Result()
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, goredis.Nil) {
		s.logger.WarnContext(ctx, "taxonomy cache read failed", "key", key, "error", err)
	}

	name, err := load(ctx, code)
	if err != nil {
		return "", err
	}
	if err := s.redis.Set(ctx, key, name, s.ttl).Err(); err != nil {
		s.logger.WarnContext(ctx, "taxonomy cache write failed", "key", key, "error", err)
	}
	return name, nil
}

func (s *Store) namesThrough(ctx context.Context, level string, codes []int, load func(context.Context, []int) (map[int]string, error)) (map[int]string, error) {
	out := make(map[int]string, len(codes))
	missing := codes

	keys := make([]string, len(codes))
	for i, code := range codes {
		keys[i] = cacheKey(level, code)
	}
	if cached, err := s.redis.MGet(ctx, keys...).Result(); err == nil {
		missing = missing[:0]
		for i, v := range cached {
			name, ok := v.(string)
			if !ok {
				missing = append(missing, codes[i])
				continue
			}
			out[codes[i]] = name
		}
	} else {
		s.logger.WarnContext(ctx, "taxonomy cache bulk read failed", "level", level, "error", err)
	}

	if len(missing) == 0 {
		return out, nil
	}

	loaded, err := load(ctx, missing)
	if err != nil {
		return nil, err
	}
	for code, name := range loaded {
		out[code] = name
		if err := s.redis.Set(ctx, cacheKey(level, code), name, s.ttl).Err(); err != nil {
			s.logger.WarnContext(ctx, "taxonomy cache write failed", "level", level, "error", err)
		}
	}
	return out, nil
}

func cacheKey(level string, code int) string {
	return keyPrefix + level + ":" + strconv.Itoa(code)
}

// Invalidate drops every cached taxonomy name. Called after reseeding.
func (s *Store) Invalidate(ctx context.Context) {
	iter := s.redis.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.redis.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.WarnContext(ctx, "taxonomy cache invalidation failed", "key", iter.Val(), "error", err)
			return
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.WarnContext(ctx, "taxonomy cache scan failed", "error", err)
	}
}
