package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            int
	DataPath        string
	DBPath          string
	BlobPath        string
	PublicBaseURL   string
	JWTSecret       string
	AdminEmail      string
	AdminPassword   string
	EngineToken     string
	ProcessingDelay time.Duration
	Location        *time.Location
	CORSOrigins     []string
}

func Load() *Config {
	// Optional .env for local development; deployments set env vars directly.
	godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	dataPath := getEnv("DATA_PATH", "/data")

	// JWT secret: require explicit setting or generate random
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("Failed to generate random JWT secret: %v", err)
		}
		jwtSecret = hex.EncodeToString(b)
		log.Println("WARNING: JWT_SECRET not set, using random secret. Sessions will not survive restarts. Set JWT_SECRET env var for persistent sessions.")
	}

	// Seconds between accepting a video and its analysis being considered ready
	delaySec, err := strconv.Atoi(getEnv("PROCESSING_DELAY", "300"))
	if err != nil || delaySec <= 0 {
		delaySec = 300
	}

	// Timezone for date/time grouping of results. One policy for the whole
	// service; defaults to the host's local timezone.
	loc := time.Local
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			log.Printf("WARNING: invalid TIMEZONE %q, using local: %v", tz, err)
		} else {
			loc = l
		}
	}

	// CORS origins: comma-separated list or "*" (default)
	corsOrigins := []string{"*"}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		corsOrigins = make([]string, 0, len(origins))
		for _, o := range origins {
			o = strings.TrimSpace(o)
			if o != "" {
				corsOrigins = append(corsOrigins, o)
			}
		}
	}

	return &Config{
		Port:            port,
		DataPath:        dataPath,
		DBPath:          getEnv("DB_PATH", dataPath+"/focustrack.db"),
		BlobPath:        getEnv("BLOB_PATH", dataPath+"/blobs"),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", port)),
		JWTSecret:       jwtSecret,
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@focustrack.local"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin"),
		EngineToken:     os.Getenv("ENGINE_TOKEN"),
		ProcessingDelay: time.Duration(delaySec) * time.Second,
		Location:        loc,
		CORSOrigins:     corsOrigins,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
