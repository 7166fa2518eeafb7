package config

// EnvPrefix namespaces every environment variable the service reads.
const EnvPrefix = "cartsvc"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "CARTSVC_DB_DSN"
	EnvDBHost = "CARTSVC_DB_HOST"
	EnvDBUser = "CARTSVC_DB_USER"
	EnvDBName = "CARTSVC_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
