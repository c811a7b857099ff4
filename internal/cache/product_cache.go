package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"crm-service/internal/models"
	"crm-service/internal/repository"
)

const (
	keyAllProducts = "products:all"
	notFoundMarker = "notfound"
)

// CachedProductRepository decorates a ProductRepository with a read-through
// Redis cache. Writes invalidate first and then go to the real repository,
// so a failed invalidation can never leave a stale entry behind a successful
// write.
type CachedProductRepository struct {
	realRepo repository.ProductRepository
	redis    *redis.Client
	log      *slog.Logger
	ttl      time.Duration
}

func NewCachedProductRepository(realRepo repository.ProductRepository, redis *redis.Client, log *slog.Logger) *CachedProductRepository {
	return &CachedProductRepository{
		realRepo: realRepo,
		redis:    redis,
		log:      log,
		ttl:      5 * time.Minute,
	}
}

func productKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func (c *CachedProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	key := productKey(id)

	data, err := c.redis.Get(ctx, key).Bytes()

	switch {
	case err == nil:
		if string(data) == notFoundMarker {
			return nil, repository.ErrNotFound
		}

		var product models.Product
		if err := json.Unmarshal(data, &product); err != nil {
			c.log.Warn("failed to unmarshal cached product, continuing with DB", "error", err)
			break
		}

		return &product, nil

	case err == redis.Nil:

	default:
		c.log.Warn("redis error, continuing with DB", "error", err)
	}

	product, err := c.realRepo.GetByID(ctx, id)
	if err != nil {
		if setErr := c.redis.Set(ctx, key, notFoundMarker, 1*time.Minute).Err(); setErr != nil {
			c.log.Warn("failed to cache notfound marker", "error", setErr)
		}
		return nil, err
	}

	jsonData, err := json.Marshal(product)
	if err != nil {
		c.log.Warn("failed to marshal product", "error", err)
		return product, nil
	}

	if err := c.redis.Set(ctx, key, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache product", "error", err)
	}

	return product, nil
}

func (c *CachedProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	data, err := c.redis.Get(ctx, keyAllProducts).Bytes()

	if err == nil {
		var products []models.Product
		if err := json.Unmarshal(data, &products); err == nil {
			return products, nil
		}
		c.log.Warn("failed to unmarshal cached product list, continuing with DB")
	} else if err != redis.Nil {
		c.log.Warn("redis error, continuing with DB", "error", err)
	}

	products, err := c.realRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(products)
	if err != nil {
		c.log.Warn("failed to marshal product list", "error", err)
	} else if err := c.redis.Set(ctx, keyAllProducts, jsonData, c.ttl).Err(); err != nil {
		c.log.Warn("failed to cache product list", "error", err)
	}

	return products, nil
}

func (c *CachedProductRepository) invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.redis.Del(ctx, productKey(id), keyAllProducts).Err(); err != nil {
		c.log.Warn("failed to invalidate product cache", "product_id", id, "error", err)
	}
}

func (c *CachedProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := c.redis.Del(ctx, keyAllProducts).Err(); err != nil {
		c.log.Warn("failed to invalidate product list cache", "error", err)
	}

	return c.realRepo.Create(ctx, product)
}

func (c *CachedProductRepository) Update(ctx context.Context, product *models.Product) error {
	c.invalidate(ctx, product.ID)
	return c.realRepo.Update(ctx, product)
}

func (c *CachedProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	c.invalidate(ctx, id)
	return c.realRepo.Delete(ctx, id)
}

func (c *CachedProductRepository) UpdateStock(ctx context.Context, id uuid.UUID, change int) error {
	c.invalidate(ctx, id)
	return c.realRepo.UpdateStock(ctx, id, change)
}

// LowStock is not cached: the low-stock job needs to see current stock
// levels, not values up to five minutes old.
func (c *CachedProductRepository) LowStock(ctx context.Context, threshold int) ([]models.Product, error) {
	return c.realRepo.LowStock(ctx, threshold)
}
