package config

// EnvPrefix is empty because every field carries its full variable name.
const EnvPrefix = ""

const (
	AppEnvProd = "prod"
	AppEnvDev  = "dev"
	AppEnvTest = "test"
)

const (
	EnvAppEnv              = "PARTSBIN_APP_ENV"
	EnvPort                = "PARTSBIN_APP_PORT"
	EnvAllowedFrontendURLs = "PARTSBIN_ALLOWED_FRONTEND_URLS"
	EnvDBDSN               = "PARTSBIN_DB_DSN"
	EnvDBHost              = "PARTSBIN_DB_HOST"
	EnvDBUser              = "PARTSBIN_DB_USER"
	EnvDBName              = "PARTSBIN_DB_NAME"
	EnvUseSQLite           = "PARTSBIN_USE_SQLITE"
	EnvRedisURL            = "PARTSBIN_REDIS_URL"
	EnvDigiKeyID           = "DIGIKEY_ID"
	EnvDigiKeyKey          = "DIGIKEY_KEY"
	EnvStrictOrderMatching = "STRICT_ORDER_MATCHING"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
