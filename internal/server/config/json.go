package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
	"github.com/dmitrijs2005/filesmanager/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "30s" or
// integer nanoseconds. Absent or zero fields keep the current value.
type JsonConfig struct {
	EndpointAddrHTTP string `json:"endpoint_addr_http"`
	EndpointAddrGRPC string `json:"endpoint_addr_grpc"`
	LogLevel         string `json:"log_level"`
	LogFormat        string `json:"log_format"`

	MetadataBackend string `json:"metadata_backend"`
	DatabaseDSN     string `json:"database_dsn"`
	MongoURI        string `json:"mongo_uri"`
	MongoDatabase   string `json:"mongo_database"`

	SessionBackend string         `json:"session_backend"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPassword  string         `json:"redis_password"`
	RedisDB        int            `json:"redis_db"`
	SessionTTL     timex.Duration `json:"session_ttl"`

	ContentBackend string `json:"content_backend"`
	StoragePath    string `json:"storage_path"`
	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`

	QueueBackend      string         `json:"queue_backend"`
	NATSURL           string         `json:"nats_url"`
	QueueMaxDeliver   int            `json:"queue_max_deliver"`
	QueueAckWait      timex.Duration `json:"queue_ack_wait"`
	WorkerConcurrency int            `json:"worker_concurrency"`

	PageSize            int            `json:"page_size"`
	MaxUploadBytes      int64          `json:"max_upload_bytes"`
	HealthCheckInterval timex.Duration `json:"health_check_interval"`
	ShutdownTimeout     timex.Duration `json:"shutdown_timeout"`
}

// ConfigEnvVar may point to the JSON file when no -c/-config flag is given.
const ConfigEnvVar = "FM_CONFIG"

// parseJson overlays values from the JSON file named by -c/-config (or
// FM_CONFIG). Nothing happens when no file is named. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigPath(ConfigEnvVar)

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)

	setString(&config.MetadataBackend, c.MetadataBackend)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.MongoURI, c.MongoURI)
	setString(&config.MongoDatabase, c.MongoDatabase)

	setString(&config.SessionBackend, c.SessionBackend)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setNumber(&config.RedisDB, c.RedisDB)
	setNumber(&config.SessionTTL, c.SessionTTL.Duration)

	setString(&config.ContentBackend, c.ContentBackend)
	setString(&config.StoragePath, c.StoragePath)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	setString(&config.QueueBackend, c.QueueBackend)
	setString(&config.NATSURL, c.NATSURL)
	setNumber(&config.QueueMaxDeliver, c.QueueMaxDeliver)
	setNumber(&config.QueueAckWait, c.QueueAckWait.Duration)
	setNumber(&config.WorkerConcurrency, c.WorkerConcurrency)

	setNumber(&config.PageSize, c.PageSize)
	setNumber(&config.MaxUploadBytes, c.MaxUploadBytes)
	setNumber(&config.HealthCheckInterval, c.HealthCheckInterval.Duration)
	setNumber(&config.ShutdownTimeout, c.ShutdownTimeout.Duration)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setNumber[T ~int | ~int64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}
