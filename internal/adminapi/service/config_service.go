package service

import (
	"context"
)

// ConfigServiceImpl implements the ConfigService interface
type ConfigServiceImpl struct {
	store ConfigStore
}

// NewConfigService creates a new configuration service
func NewConfigService(store ConfigStore) ConfigService {
	return &ConfigServiceImpl{
		store: store,
	}
}

// GetConfig returns the raw value for a single key
func (s *ConfigServiceImpl) GetConfig(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, key)
}

// GetAllConfig returns every configured key/value pair
func (s *ConfigServiceImpl) GetAllConfig(ctx context.Context) (map[string]string, error) {
	return s.store.GetAll(ctx)
}

// UpdateConfig updates an existing key. Unknown keys are rejected.
func (s *ConfigServiceImpl) UpdateConfig(ctx context.Context, key, value string) error {
	return s.store.Set(ctx, key, value)
}
