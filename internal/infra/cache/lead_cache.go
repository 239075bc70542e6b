package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/logger"
)

const (
	listKey = "backoffice:leads:all"
	// genKey sobe a cada escrita; a listagem só entra no cache se a geração não mudou.
	genKey = "backoffice:leads:gen"
)

var errStaleListing = errors.New("listagem ficou velha durante a leitura")

// NewRedisClient devolve nil se a URL estiver vazia ou inválida; o cache vira passthrough.
func NewRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Logger.Warnf("⚠️ REDIS_URL inválida, seguindo sem cache: %v", err)
		return nil
	}
	return redis.NewClient(opts)
}

// CachedLeadRepository guarda a listagem completa no Redis. Qualquer escrita invalida.
// Erros do Redis nunca sobem: cai direto no repositório.
type CachedLeadRepository struct {
	entity.LeadRepositoryInterface
	rdb *redis.Client
	ttl time.Duration
}

func NewCachedLeadRepository(repo entity.LeadRepositoryInterface, rdb *redis.Client, ttl time.Duration) *CachedLeadRepository {
	return &CachedLeadRepository{LeadRepositoryInterface: repo, rdb: rdb, ttl: ttl}
}

func (c *CachedLeadRepository) ListAll(ctx context.Context) ([]entity.Lead, error) {
	if c.rdb == nil {
		return c.LeadRepositoryInterface.ListAll(ctx)
	}

	raw, err := c.rdb.Get(ctx, listKey).Bytes()
	switch {
	case err == nil:
		var leads []entity.Lead
		if jerr := json.Unmarshal(raw, &leads); jerr == nil {
			return leads, nil
		}
		logger.Logger.Warn("⚠️ Cache de leads corrompido, recarregando do banco")
	case !errors.Is(err, redis.Nil):
		logger.Logger.Warnf("⚠️ Redis indisponível (get): %v", err)
	}

	// a geração é lida antes do banco: uma escrita no meio do caminho impede o SET
	gen, genErr := c.generation(ctx)

	leads, err := c.LeadRepositoryInterface.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		logger.Logger.Warnf("⚠️ Redis indisponível (geração): %v", genErr)
		return leads, nil
	}
	if err := c.store(ctx, gen, leads); err != nil {
		if errors.Is(err, errStaleListing) || errors.Is(err, redis.TxFailedErr) {
			logger.Logger.Debug("Listagem de leads não cacheada: houve escrita durante a leitura")
		} else {
			logger.Logger.Warnf("⚠️ Redis indisponível (set): %v", err)
		}
	}

	return leads, nil
}

func (c *CachedLeadRepository) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store grava a listagem só se ninguém invalidou desde que gen foi lida.
func (c *CachedLeadRepository) store(ctx context.Context, gen int64, leads []entity.Lead) error {
	raw, err := json.Marshal(leads)
	if err != nil {
		return err
	}

	return c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleListing
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, listKey, raw, c.ttl)
			return nil
		})
		return err
	}, genKey)
}

func (c *CachedLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	if err := c.LeadRepositoryInterface.Create(ctx, lead); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CachedLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	err := c.LeadRepositoryInterface.Update(ctx, lead)
	// invalida mesmo em erro: a escrita pode ter chegado ao banco
	c.invalidate(ctx)
	return err
}

func (c *CachedLeadRepository) UpdateStatus(ctx context.Context, id string, status entity.Stage, enteredAt time.Time) error {
	err := c.LeadRepositoryInterface.UpdateStatus(ctx, id, status, enteredAt)
	c.invalidate(ctx)
	return err
}

func (c *CachedLeadRepository) Delete(ctx context.Context, id string) error {
	err := c.LeadRepositoryInterface.Delete(ctx, id)
	c.invalidate(ctx)
	return err
}

func (c *CachedLeadRepository) invalidate(ctx context.Context) {
	if c.rdb == nil {
		return
	}

	ctx = context.WithoutCancel(ctx)
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey)
		p.Del(ctx, listKey)
		return nil
	})
	if err != nil {
		logger.Logger.Warnf("⚠️ Falha ao invalidar cache de leads: %v", err)
	}
}

// Ping para o health check.
func (c *CachedLeadRepository) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *CachedLeadRepository) Enabled() bool {
	return c.rdb != nil
}
