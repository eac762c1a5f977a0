package config

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
	BridgeConfig
}

type EnvConfig interface {
	GetAppName() string
	GetDataFolder() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	API
	Storage
	Bridge
}

func New() Config {
	return mainConfig{}
}
