package secrets

import (
	"sync"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload" // Load .env file automatically
)

var (
	cfg  Config
	once sync.Once
)

// Config carries the base64-encoded master key for the blob codec. The
// default is a fixed demo key so the library works out of the box; real
// deployments override it via the environment (see cmd/keygen).
type Config struct {
	EncryptionKey string `env:"SECRETS_ENCRYPTION_KEY" envDefault:"ZW50ZXJwcmlzZS1hdXRoLWRlbW8tbWFzdGVyLWtleTE="`
}

// LoadConfig parses the codec configuration from the environment once per
// process and returns the cached value on subsequent calls.
func LoadConfig() (Config, error) {
	var err error
	once.Do(func() {
		if parseErr := env.Parse(&cfg); parseErr != nil {
			err = parseErr
			return
		}
		if cfg.EncryptionKey == "" {
			err = ErrKeyNotSet
		}
	})
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewCodecFromConfig decodes the configured master key and builds a Codec.
func NewCodecFromConfig(cfg Config) (*Codec, error) {
	key, err := DecodeKey(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}
	return NewCodec(key)
}
