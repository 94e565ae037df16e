package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/vietanh2810/stand-portal-api/internal/cache"
	"github.com/vietanh2810/stand-portal-api/internal/domain"
)

// PartnerCache is a read-through cache of directory entries.
type PartnerCache interface {
	Get(ctx context.Context, key string, dst interface{}) error
	Set(ctx context.Context, key string, value interface{}) error
}

// PartnerDirectory resolves partner ids to display entries from the user store.
type PartnerDirectory struct {
	users UserRepository
	cache PartnerCache
}

// NewPartnerDirectory works without a cache when c is nil.
func NewPartnerDirectory(users UserRepository, c PartnerCache) *PartnerDirectory {
	return &PartnerDirectory{
		users: users,
		cache: c,
	}
}

func (d *PartnerDirectory) Lookup(ctx context.Context, partnerID uint) (domain.Partner, error) {
	key := strconv.FormatUint(uint64(partnerID), 10)

	if d.cache != nil {
		var cached domain.Partner
		err := d.cache.Get(ctx, key, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			zap.L().Debug("partner cache read failed", zap.Error(err))
		}
	}

	user, err := d.users.FindByID(ctx, partnerID)
	if err != nil {
		return domain.Partner{}, fmt.Errorf("d.users.FindByID -> %w", err)
	}

	partner := toPartner(user)
	if d.cache != nil {
		if err = d.cache.Set(ctx, key, partner); err != nil {
			zap.L().Debug("partner cache write failed", zap.Error(err))
		}
	}

	return partner, nil
}
