package config

type Config interface {
	EnvConfig
	PagingConfig
	TokenConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
}

type PagingConfig interface {
	GetPageSize() int
	GetInitialLoadSize() int
}

type TokenConfig interface {
	GetTokenSecret() string
	GetIssuer() string
}

type mainConfig struct {
	EnvVars
	Paging
	Tokens
}

func New() Config {
	return mainConfig{}
}
