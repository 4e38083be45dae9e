package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures the runtime configuration for the VidTube backend service.
type Config struct {
	AppPort    int    `env:"VIDTUBE_PORT" envDefault:"8080"`
	LogLevel   string `env:"VIDTUBE_LOG_LEVEL" envDefault:"info"`
	CORSOrigin string `env:"VIDTUBE_CORS_ORIGIN" envDefault:"*"`

	MongoURI      string `env:"VIDTUBE_MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"VIDTUBE_MONGODB_DATABASE" envDefault:"vidtube"`

	AccessTokenSecret  string        `env:"VIDTUBE_ACCESS_TOKEN_SECRET" envDefault:"dev-access-secret"`
	AccessTokenTTL     time.Duration `env:"VIDTUBE_ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenSecret string        `env:"VIDTUBE_REFRESH_TOKEN_SECRET" envDefault:"dev-refresh-secret"`
	RefreshTokenTTL    time.Duration `env:"VIDTUBE_REFRESH_TOKEN_TTL" envDefault:"240h"`
	SecureCookies      bool          `env:"VIDTUBE_SECURE_COOKIES" envDefault:"true"`

	ObjectStore ObjectStoreConfig

	UploadTempDir  string `env:"VIDTUBE_UPLOAD_TEMP_DIR" envDefault:""`
	MaxUploadBytes int64  `env:"VIDTUBE_MAX_UPLOAD_BYTES" envDefault:"104857600"`
	StaticDir      string `env:"VIDTUBE_STATIC_DIR" envDefault:"public"`

	FFProbePath    string        `env:"VIDTUBE_FFPROBE_PATH" envDefault:"ffprobe"`
	FFProbeTimeout time.Duration `env:"VIDTUBE_FFPROBE_TIMEOUT" envDefault:"30s"`

	// EnforceOwnership controls whether edit/delete endpoints verify the
	// requester owns the resource.
	EnforceOwnership bool `env:"VIDTUBE_ENFORCE_OWNERSHIP" envDefault:"true"`
}

// ObjectStoreConfig targets the S3-compatible service holding binary media.
type ObjectStoreConfig struct {
	Bucket        string `env:"VIDTUBE_S3_BUCKET" envDefault:"vidtube-media"`
	Region        string `env:"VIDTUBE_S3_REGION" envDefault:"us-east-1"`
	Endpoint      string `env:"VIDTUBE_S3_ENDPOINT" envDefault:""`
	PublicBaseURL string `env:"VIDTUBE_S3_PUBLIC_BASE_URL" envDefault:""`
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development while allowing overrides per variable.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
