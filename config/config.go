package config

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	Database struct {
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		SSLMode  string
	}
	JWT struct {
		Secret   string
		TTLHours int
	}
	Minio struct {
		Endpoint      string
		AccessKey     string
		SecretKey     string
		UseSSL        bool
		VideoBucket   string
		ImageBucket   string
		PublicBaseURL string
	}
	Log struct {
		Level string
	}
}

var C Config

// Load reads config.yml and lets environment variables override any key,
// e.g. DATABASE_HOST overrides database.host.
func Load() error {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("..")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "streamhive")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("jwt.secret", "")
	viper.SetDefault("jwt.ttlhours", 24)
	viper.SetDefault("minio.endpoint", "localhost:9000")
	viper.SetDefault("minio.accesskey", "minioadmin")
	viper.SetDefault("minio.secretkey", "minioadmin")
	viper.SetDefault("minio.usessl", false)
	viper.SetDefault("minio.videobucket", "videos")
	viper.SetDefault("minio.imagebucket", "images")
	viper.SetDefault("minio.publicbaseurl", "http://localhost:9000")
	viper.SetDefault("log.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		logrus.Warn("config file not found, using defaults and environment")
	}

	C.Server.Port = viper.GetString("server.port")
	C.Database.Host = viper.GetString("database.host")
	C.Database.Port = viper.GetString("database.port")
	C.Database.User = viper.GetString("database.user")
	C.Database.Password = viper.GetString("database.password")
	C.Database.Name = viper.GetString("database.name")
	C.Database.SSLMode = viper.GetString("database.sslmode")
	C.JWT.Secret = viper.GetString("jwt.secret")
	C.JWT.TTLHours = viper.GetInt("jwt.ttlhours")
	C.Minio.Endpoint = viper.GetString("minio.endpoint")
	C.Minio.AccessKey = viper.GetString("minio.accesskey")
	C.Minio.SecretKey = viper.GetString("minio.secretkey")
	C.Minio.UseSSL = viper.GetBool("minio.usessl")
	C.Minio.VideoBucket = viper.GetString("minio.videobucket")
	C.Minio.ImageBucket = viper.GetString("minio.imagebucket")
	C.Minio.PublicBaseURL = viper.GetString("minio.publicbaseurl")
	C.Log.Level = viper.GetString("log.level")

	return nil
}

// InitLogger applies the configured log level.
func InitLogger() {
	level, err := logrus.ParseLevel(C.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
