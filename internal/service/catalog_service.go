package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/entity"
	"github.com/alex-rublevsky/rublevsky-studio-sub002/internal/repository"
)

const catalogCacheKey = "catalog:products"
const catalogCacheTTL = 1 * time.Minute

// CatalogService assembles the catalog snapshot (products with variations and
// attributes) that validation runs against, with a short-lived Redis
// read-through cache in front of the store.
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	rdb         *redis.Client
}

// NewCatalogService creates a new CatalogService. A nil Redis client disables
// caching.
func NewCatalogService(catalogRepo repository.CatalogRepository, rdb *redis.Client) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		rdb:         rdb,
	}
}

// Products returns the full catalog snapshot.
func (c *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	if c.rdb != nil {
		cached, err := c.rdb.Get(ctx, catalogCacheKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msg("Error reading catalog from cache")
		}
		if cached != "" {
			var products []entity.Product
			if err := json.Unmarshal([]byte(cached), &products); err == nil {
				return products, nil
			}
			logger.Warn().Msg("Discarding unreadable catalog cache entry")
		}
	}

	products, err := c.catalogRepo.GetProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error getting products")
		return nil, err
	}

	if c.rdb != nil {
		data, err := json.Marshal(products)
		if err == nil {
			err = c.rdb.Set(ctx, catalogCacheKey, data, catalogCacheTTL).Err()
		}
		if err != nil {
			logger.Error().Err(err).Msg("Error caching catalog")
		}
	}

	return products, nil
}

// Product returns one product with its variations and attributes.
func (c *CatalogService) Product(ctx context.Context, id int) (*entity.Product, error) {
	if c.rdb != nil {
		key := fmt.Sprintf("product:%d", id)
		cached, err := c.rdb.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			logger.Error().Err(err).Msgf("Error reading product %d from cache", id)
		}
		if cached != "" {
			var product entity.Product
			if err := json.Unmarshal([]byte(cached), &product); err == nil {
				return &product, nil
			}
		}
	}

	product, err := c.catalogRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.rdb != nil {
		data, err := json.Marshal(product)
		if err == nil {
			err = c.rdb.Set(ctx, fmt.Sprintf("product:%d", id), data, catalogCacheTTL).Err()
		}
		if err != nil {
			logger.Error().Err(err).Msgf("Error caching product %d", id)
		}
	}

	return product, nil
}
