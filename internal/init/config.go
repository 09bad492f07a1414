package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// App mode & server
	Mode              string
	Port              string
	ServerAddr        string
	TLSCertFile       string
	TLSKeyFile        string
	JWTSecret         string
	PlaceholderAuthor string
	LogLevel          string

	// Kafka
	KafkaEnabled   bool
	KafkaBroker    string
	KafkaTopic     string
	KafkaGroupID   string
	KafkaPartition int
	KafkaReadTO    time.Duration
	KafkaWriteTO   time.Duration

	// Worker
	WorkerCount     int
	WorkerQueueSize int

	// Archive report (MODE=archive)
	ArchiveAuthor string
	ArchiveLimit  int

	// Cassandra
	CassandraHost     string
	CassandraKeyspace string
	CassandraUsername string
	CassandraPassword string
	CassandraTimeout  time.Duration
	CassandraDC       string
	MigrationsPath    string
}

// Init loads the config using Viper and returns it
func Init() *Config {
	// .env is optional, real environment variables always win
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	// Load env variables
	v.AutomaticEnv()

	// Optional config file support
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignore error if no file

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MODE", "server")
	v.SetDefault("PORT", "4000")
	v.SetDefault("PLACEHOLDER_AUTHOR", "You")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("KAFKA_ENABLED", false)
	v.SetDefault("KAFKA_BROKER", "localhost:29092")
	v.SetDefault("KAFKA_TOPIC", "post-events")
	v.SetDefault("KAFKA_GROUP_ID", "archive-worker")
	v.SetDefault("KAFKA_PARTITION", 0)
	v.SetDefault("KAFKA_READ_TIMEOUT", "10s")
	v.SetDefault("KAFKA_WRITE_TIMEOUT", "10s")

	v.SetDefault("WORKER_COUNT", 0)
	v.SetDefault("WORKER_QUEUE_SIZE", 0)
	v.SetDefault("ARCHIVE_LIMIT", 50)

	v.SetDefault("CASSANDRA_HOST", "localhost")
	v.SetDefault("CASSANDRA_KEYSPACE", "clyq")
	v.SetDefault("CASSANDRA_TIMEOUT", "10s")
	v.SetDefault("MIGRATIONS_PATH", "./migrations/cassandra")
	// Optional: Cassandra username/password/DC and TLS files can be empty
}

func fromViper(v *viper.Viper) *Config {
	c := &Config{
		Mode:              strings.ToLower(v.GetString("MODE")),
		Port:              v.GetString("PORT"),
		ServerAddr:        v.GetString("SERVER_ADDR"),
		TLSCertFile:       v.GetString("TLS_CERT_FILE"),
		TLSKeyFile:        v.GetString("TLS_KEY_FILE"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		PlaceholderAuthor: v.GetString("PLACEHOLDER_AUTHOR"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		KafkaEnabled:      v.GetBool("KAFKA_ENABLED"),
		KafkaBroker:       v.GetString("KAFKA_BROKER"),
		KafkaTopic:        v.GetString("KAFKA_TOPIC"),
		KafkaGroupID:      v.GetString("KAFKA_GROUP_ID"),
		KafkaPartition:    v.GetInt("KAFKA_PARTITION"),
		KafkaReadTO:       parseDuration(v.GetString("KAFKA_READ_TIMEOUT"), 10*time.Second),
		KafkaWriteTO:      parseDuration(v.GetString("KAFKA_WRITE_TIMEOUT"), 10*time.Second),
		WorkerCount:       v.GetInt("WORKER_COUNT"),
		WorkerQueueSize:   v.GetInt("WORKER_QUEUE_SIZE"),
		ArchiveAuthor:     v.GetString("ARCHIVE_AUTHOR"),
		ArchiveLimit:      v.GetInt("ARCHIVE_LIMIT"),
		CassandraHost:     v.GetString("CASSANDRA_HOST"),
		CassandraKeyspace: v.GetString("CASSANDRA_KEYSPACE"),
		CassandraUsername: v.GetString("CASSANDRA_USERNAME"),
		CassandraPassword: v.GetString("CASSANDRA_PASSWORD"),
		CassandraTimeout:  parseDuration(v.GetString("CASSANDRA_TIMEOUT"), 10*time.Second),
		CassandraDC:       v.GetString("CASSANDRA_DC"),
		MigrationsPath:    v.GetString("MIGRATIONS_PATH"),
	}

	// SERVER_ADDR wins over PORT when both are given
	if c.ServerAddr == "" {
		c.ServerAddr = ":" + c.Port
	}
	if c.PlaceholderAuthor == "" {
		c.PlaceholderAuthor = "You"
	}
	return c
}

// TLSEnabled reports whether both certificate and key were configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

func parseDuration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}
