package config

import "path/filepath"

type StorageConfig interface {
	GetTokenKey() string
	GetTokenDBPath() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetTokenKey is the fixed key the token is stored under in both the durable
// and the session-scoped store.
func (Storage) GetTokenKey() string {
	return GetEnv("TOKEN_KEY", "auth_token")
}

func (Storage) GetTokenDBPath() string {
	return GetEnv("TOKEN_DB", filepath.Join(EnvVars{}.GetDataFolder(), "session.db"))
}

// GetRedisAddr switches the durable store to Redis when set.
func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}
