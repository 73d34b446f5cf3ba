package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment variable read by parseEnv.
const EnvPrefix = "FM_"

// parseEnv overlays values from FM_* environment variables. PORT and
// FOLDER_PATH are honoured as shorthands for the HTTP port and the storage
// path. Unparsable numbers or durations panic.
func parseEnv(config *Config) {
	if port, ok := os.LookupEnv("PORT"); ok && port != "" {
		config.EndpointAddrHTTP = ":" + port
	}
	envString(&config.StoragePath, "FOLDER_PATH")

	envString(&config.EndpointAddrHTTP, EnvPrefix+"HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, EnvPrefix+"GRPC_ADDR")
	envString(&config.LogLevel, EnvPrefix+"LOG_LEVEL")
	envString(&config.LogFormat, EnvPrefix+"LOG_FORMAT")

	envString(&config.MetadataBackend, EnvPrefix+"METADATA_BACKEND")
	envString(&config.DatabaseDSN, EnvPrefix+"DATABASE_DSN")
	envString(&config.MongoURI, EnvPrefix+"MONGO_URI")
	envString(&config.MongoDatabase, EnvPrefix+"MONGO_DATABASE")

	envString(&config.SessionBackend, EnvPrefix+"SESSION_BACKEND")
	envString(&config.RedisAddr, EnvPrefix+"REDIS_ADDR")
	envString(&config.RedisPassword, EnvPrefix+"REDIS_PASSWORD")
	envInt(&config.RedisDB, EnvPrefix+"REDIS_DB")
	envDuration(&config.SessionTTL, EnvPrefix+"SESSION_TTL")

	envString(&config.ContentBackend, EnvPrefix+"CONTENT_BACKEND")
	envString(&config.StoragePath, EnvPrefix+"STORAGE_PATH")
	envString(&config.S3RootUser, EnvPrefix+"S3_ROOT_USER")
	envString(&config.S3RootPassword, EnvPrefix+"S3_ROOT_PASSWORD")
	envString(&config.S3Bucket, EnvPrefix+"S3_BUCKET")
	envString(&config.S3Region, EnvPrefix+"S3_REGION")
	envString(&config.S3BaseEndpoint, EnvPrefix+"S3_BASE_ENDPOINT")

	envString(&config.QueueBackend, EnvPrefix+"QUEUE_BACKEND")
	envString(&config.NATSURL, EnvPrefix+"NATS_URL")
	envInt(&config.QueueMaxDeliver, EnvPrefix+"QUEUE_MAX_DELIVER")
	envDuration(&config.QueueAckWait, EnvPrefix+"QUEUE_ACK_WAIT")
	envInt(&config.WorkerConcurrency, EnvPrefix+"WORKER_CONCURRENCY")

	envInt(&config.PageSize, EnvPrefix+"PAGE_SIZE")
	envInt64(&config.MaxUploadBytes, EnvPrefix+"MAX_UPLOAD_BYTES")
	envDuration(&config.HealthCheckInterval, EnvPrefix+"HEALTH_CHECK_INTERVAL")
	envDuration(&config.ShutdownTimeout, EnvPrefix+"SHUTDOWN_TIMEOUT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envInt64(dst *int64, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = n
}

func envDuration(dst *time.Duration, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", key, err))
	}
	*dst = d
}
