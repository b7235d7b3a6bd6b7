package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerAddress   string
	MongoURI        string
	MongoDB         string
	JWTSecret       string
	JWTExpiration   time.Duration
	UploadDir       string
	MaxUploadSizeMB int64
	StorageBucket   string
	FirebaseAPIKey  string
	MapsAPIKey      string
	ProfileAPIBase  string
}

func Load() *Config {
	return &Config{
		ServerAddress:   getEnv("SERVER_ADDRESS", ":8080"),
		MongoURI:        getEnv("MONGO_URI", ""),
		MongoDB:         getEnv("MONGO_DB", "aroundu"),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:   24 * time.Hour,
		UploadDir:       getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadSizeMB: getEnvInt64("MAX_UPLOAD_SIZE_MB", 8),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		FirebaseAPIKey:  getEnv("FIREBASE_API_KEY", ""),
		MapsAPIKey:      getEnv("MAPS_API_KEY", ""),
		ProfileAPIBase:  getEnv("PROFILE_API_BASE", "http://localhost:8080/api"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
