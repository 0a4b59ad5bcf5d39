package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

const productKeyPrefix = "ledger:product:"

// ProductCache almacén clave-valor para referencias de producto.
type ProductCache interface {
	Get(ctx context.Context, id int64) (*entity.Product, bool, error)
	Set(ctx context.Context, p *entity.Product, ttl time.Duration) error
}

// NoopProductCache no guarda nada; se usa cuando Redis no está configurado.
type NoopProductCache struct{}

func (NoopProductCache) Get(context.Context, int64) (*entity.Product, bool, error) {
	return nil, false, nil
}

func (NoopProductCache) Set(context.Context, *entity.Product, time.Duration) error { return nil }

// RedisProductCache guarda el producto serializado en JSON bajo ledger:product:{id}.
type RedisProductCache struct {
	client *redis.Client
}

// NewRedisProductCache crea el cliente y verifica la conexión.
func NewRedisProductCache(ctx context.Context, addr, password string, db int) (*RedisProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar redis: %w", err)
	}
	return &RedisProductCache{client: client}, nil
}

// NewRedisProductCacheWithClient reutiliza un cliente existente.
func NewRedisProductCacheWithClient(client *redis.Client) *RedisProductCache {
	return &RedisProductCache{client: client}
}

func productKey(id int64) string {
	return productKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisProductCache) Get(ctx context.Context, id int64) (*entity.Product, bool, error) {
	val, err := c.client.Get(ctx, productKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get product: %w", err)
	}
	var p entity.Product
	if err := json.Unmarshal(val, &p); err != nil {
		return nil, false, fmt.Errorf("decode cached product: %w", err)
	}
	return &p, true, nil
}

func (c *RedisProductCache) Set(ctx context.Context, p *entity.Product, ttl time.Duration) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	if err := c.client.Set(ctx, productKey(p.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set product: %w", err)
	}
	return nil
}

// Close cierra el cliente Redis.
func (c *RedisProductCache) Close() error {
	return c.client.Close()
}

var _ repository.ProductRepository = (*CachedProductRepository)(nil)

// CachedProductRepository antepone la caché al repositorio de productos.
// Una caché caída no bloquea el libro diario: se registra y se consulta la base.
// Los productos inexistentes no se cachean.
type CachedProductRepository struct {
	next  repository.ProductRepository
	cache ProductCache
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachedProductRepository envuelve next con cache.
func NewCachedProductRepository(next repository.ProductRepository, cache ProductCache, ttl time.Duration, log zerolog.Logger) *CachedProductRepository {
	if cache == nil {
		cache = NoopProductCache{}
	}
	return &CachedProductRepository{next: next, cache: cache, ttl: ttl, log: log}
}

func (r *CachedProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, ok, err := r.cache.Get(ctx, id)
	if err != nil {
		r.log.Warn().Err(err).Int64("product_id", id).Msg("caché de productos no disponible")
	} else if ok {
		return p, nil
	}

	p, err = r.next.GetByID(ctx, id)
	if err != nil || p == nil {
		return p, err
	}
	if err := r.cache.Set(ctx, p, r.ttl); err != nil {
		r.log.Warn().Err(err).Int64("product_id", id).Msg("no se pudo cachear el producto")
	}
	return p, nil
}
