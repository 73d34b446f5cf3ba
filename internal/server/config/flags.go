package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-grpc string gRPC health bind address (e.g., ":50051")
//	-l string   log level
//	-m string   metadata backend: postgres | mongo | memory
//	-d string   PostgreSQL DSN
//	-mongo string MongoDB URI
//	-s string   session backend: redis | memory
//	-r string   Redis address
//	-k string   content backend: fs | s3 | memory
//	-f string   storage folder for the fs backend
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-q string   queue backend: nats | memory
//	-n string   NATS URL
//	-w int      workers per queue
//
// os.Args is filtered with flagx.FilterArgs first, so flags meant for other
// parsers (e.g. -c) do not trip this FlagSet.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-grpc", "-l", "-m", "-d", "-mongo", "-s", "-r", "-k", "-f",
		"-u", "-p", "-b", "-g", "-e", "-q", "-n", "-w",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "grpc", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.StringVar(&config.MetadataBackend, "m", config.MetadataBackend, "metadata backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.MongoURI, "mongo", config.MongoURI, "MongoDB URI")

	fs.StringVar(&config.SessionBackend, "s", config.SessionBackend, "session backend")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "Redis address")

	fs.StringVar(&config.ContentBackend, "k", config.ContentBackend, "content backend")
	fs.StringVar(&config.StoragePath, "f", config.StoragePath, "storage folder")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.QueueBackend, "q", config.QueueBackend, "queue backend")
	fs.StringVar(&config.NATSURL, "n", config.NATSURL, "NATS URL")
	fs.IntVar(&config.WorkerConcurrency, "w", config.WorkerConcurrency, "workers per queue")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
