package config

// EnvPrefix scopes envconfig lookups; tagged keys are resolved directly.
const EnvPrefix = "GOGO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	BillingProviderPaddle = "paddle"
	BillingProviderStripe = "stripe"
	BillingProviderNone   = "none"
)

const (
	EnvAppEnv          = "GOGO_APP_ENV"
	EnvAppPort         = "GOGO_APP_PORT"
	EnvDBDSN           = "GOGO_DB_DSN"
	EnvDBHost          = "GOGO_DB_HOST"
	EnvDBUser          = "GOGO_DB_USER"
	EnvDBName          = "GOGO_DB_NAME"
	EnvDBPassword      = "GOGO_DB_PASSWORD"
	EnvRedisURL        = "GOGO_REDIS_URL"
	EnvJWTSecret       = "GOGO_JWT_SECRET"
	EnvBillingProvider = "GOGO_BILLING_PROVIDER"
	EnvPaddleAPIKey    = "GOGO_PADDLE_API_KEY"
	EnvStripeAPIKey    = "GOGO_STRIPE_API_KEY"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
