package config

// EnvPrefix is the envconfig prefix; individual fields carry explicit names so
// it stays empty, matching the tag-driven style.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Env var names referenced outside struct tags (validation messages, tests).
const (
	EnvAppEnv             = "POSCENTER_APP_ENV"
	EnvPort               = "POSCENTER_APP_PORT"
	EnvBackendBaseURL     = "POSCENTER_BACKEND_BASE_URL"
	EnvBackendListTimeout = "POSCENTER_BACKEND_LIST_TIMEOUT"
	EnvRedisURL           = "POSCENTER_REDIS_URL"
)
