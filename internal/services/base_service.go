package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pythonegrove/codesamples/internal/cache"
	"github.com/pythonegrove/codesamples/internal/db"
	"github.com/pythonegrove/codesamples/internal/models"
)

// IBaseService resolves the site instance a request belongs to.
type IBaseService interface {
	Resolve(ctx context.Context, host string) (*models.Base, error)
	FindBySlug(ctx context.Context, slug string) (*models.Base, error)
}

type baseService struct {
	db          *mongo.Database
	cache       cache.IJSONCache
	ttl         time.Duration
	defaultSlug string
}

// NewBaseService creates a new BaseService. defaultSlug is used when no base claims the host.
func NewBaseService(database *mongo.Database, c cache.IJSONCache, ttl time.Duration, defaultSlug string) IBaseService {
	return &baseService{db: database, cache: c, ttl: ttl, defaultSlug: defaultSlug}
}

// NormalizeHost lowercases host and strips any port.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.TrimSuffix(strings.ToLower(host), ".")
}

// Resolve finds the base serving host, falling back to the default base.
// It returns ErrBaseNotFound when neither exists. Only hosts a base claims are
// cached by host; the fallback is cached once under the default slug.
func (s *baseService) Resolve(ctx context.Context, host string) (*models.Base, error) {
	host = NormalizeHost(host)
	hostKey := "host:" + host

	if base := s.cached(ctx, hostKey); base != nil {
		return base, nil
	}

	base, err := s.findOne(ctx, bson.M{"domains": host})
	if err == nil {
		s.store(ctx, hostKey, base)
		return base, nil
	}
	if !errors.Is(err, ErrBaseNotFound) || s.defaultSlug == "" {
		return nil, err
	}

	slugKey := "slug:" + s.defaultSlug
	if base := s.cached(ctx, slugKey); base != nil {
		return base, nil
	}
	base, err = s.FindBySlug(ctx, s.defaultSlug)
	if err != nil {
		return nil, err
	}
	s.store(ctx, slugKey, base)
	return base, nil
}

func (s *baseService) cached(ctx context.Context, key string) *models.Base {
	if s.cache == nil {
		return nil
	}
	var base models.Base
	hit, err := s.cache.GetJSON(ctx, key, &base)
	if err != nil {
		log.Printf("Base cache read failed for %s: %v", key, err)
		return nil
	}
	if !hit {
		return nil
	}
	return &base
}

func (s *baseService) store(ctx context.Context, key string, base *models.Base) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, base, s.ttl); err != nil {
		log.Printf("Base cache write failed for %s: %v", key, err)
	}
}

// FindBySlug returns ErrBaseNotFound when no base has slug.
func (s *baseService) FindBySlug(ctx context.Context, slug string) (*models.Base, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *baseService) findOne(ctx context.Context, filter bson.M) (*models.Base, error) {
	var base models.Base
	err := s.db.Collection(db.BasesCollection).FindOne(ctx, filter).Decode(&base)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBaseNotFound
		}
		return nil, fmt.Errorf("error finding base: %w", err)
	}
	return &base, nil
}
