package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// UpstreamConfig holds the addresses and budgets of the FX and promotions services.
type UpstreamConfig struct {
	FxBaseURL    string
	PromoBaseURL string
	PromoTimeout time.Duration
	UseMocks     bool
}

// KafkaConfig holds quote event publishing settings. No brokers disables publishing.
type KafkaConfig struct {
	Brokers    []string
	QuoteTopic string
}

// TracingConfig holds trace export settings.
type TracingConfig struct {
	JaegerEndpoint string
}

// ServiceConfig holds all configuration for the loyalty service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	Upstreams      UpstreamConfig
	KafkaConfig    KafkaConfig
	TracingConfig  TracingConfig
	MetricsEnabled bool
}

// Load reads configuration from environment variables, and from the file
// named by CONFIG_FILE when set, and returns a validated ServiceConfig.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &ServiceConfig{
		Port:           servicePort(v.GetString("SERVICE_PORT")),
		AppEnv:         v.GetString("APP_ENV"),
		Upstreams:      loadUpstreamConfig(v),
		KafkaConfig:    loadKafkaConfig(v),
		TracingConfig:  TracingConfig{JaegerEndpoint: v.GetString("JAEGER_ENDPOINT")},
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FX_SERVICE_URL", "http://localhost:8081")
	v.SetDefault("PROMO_SERVICE_URL", "http://localhost:8082")
	v.SetDefault("PROMO_TIMEOUT", 300*time.Millisecond)
	v.SetDefault("USE_MOCK_UPSTREAMS", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_QUOTE_TOPIC", "loyalty.events")
	v.SetDefault("JAEGER_ENDPOINT", "")
	v.SetDefault("METRICS_ENABLED", true)
}

// loadUpstreamConfig extracts collaborator settings from Viper.
func loadUpstreamConfig(v *viper.Viper) UpstreamConfig {
	return UpstreamConfig{
		FxBaseURL:    v.GetString("FX_SERVICE_URL"),
		PromoBaseURL: v.GetString("PROMO_SERVICE_URL"),
		PromoTimeout: v.GetDuration("PROMO_TIMEOUT"),
		UseMocks:     v.GetBool("USE_MOCK_UPSTREAMS"),
	}
}

// loadKafkaConfig extracts Kafka settings from Viper.
func loadKafkaConfig(v *viper.Viper) KafkaConfig {
	var brokers []string
	for _, b := range strings.Split(v.GetString("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return KafkaConfig{
		Brokers:    brokers,
		QuoteTopic: v.GetString("KAFKA_QUOTE_TOPIC"),
	}
}

func servicePort(port string) string {
	port = strings.TrimSpace(port)
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

// Validate checks that the configuration can start the service.
func (c *ServiceConfig) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("SERVICE_PORT is required")
	}
	if c.Upstreams.PromoTimeout <= 0 {
		return fmt.Errorf("PROMO_TIMEOUT must be positive, got %s", c.Upstreams.PromoTimeout)
	}
	if c.Upstreams.UseMocks {
		return nil
	}
	if err := validateBaseURL("FX_SERVICE_URL", c.Upstreams.FxBaseURL); err != nil {
		return err
	}
	return validateBaseURL("PROMO_SERVICE_URL", c.Upstreams.PromoBaseURL)
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, raw)
	}
	return nil
}
