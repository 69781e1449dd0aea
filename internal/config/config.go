// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
)

// Decoder backend identifiers.
const (
	BackendMock   = "mock"
	BackendGoogle = "gcloud"
)

// ServiceConfig holds process-level settings.
type ServiceConfig struct {
	Principal   string
	GRPCPort    string
	MetricsAddr string
	LogLevel    string
	LogFormat   string
}

// DecoderConfig holds decode engine and stream settings.
type DecoderConfig struct {
	Backend       string
	SampleRateHz  int
	LanguageCode  string
	ChunkBytes    int    // file-mode read size in bytes
	BufferSamples int    // live-mode capture buffer size in samples
	InputFormat   string // live-mode input encoding: s16le or f32le
}

// KafkaConfig holds event publishing settings.
type KafkaConfig struct {
	Enabled        bool
	Brokers        []string
	TopicUtterance string
	TopicFinal     string
}

// Config is the full service configuration, read once at startup and not
// mutated afterward.
type Config struct {
	Service ServiceConfig
	Decoder DecoderConfig
	Kafka   KafkaConfig
}

// Load reads configuration from the environment, applying defaults.
func Load() *Config {
	return &Config{
		Service: ServiceConfig{
			Principal:   envOrDefault("SERVICE_PRINCIPAL", "svc-speech-decode"),
			GRPCPort:    envOrDefault("GRPC_PORT", "50051"),
			MetricsAddr: envOrDefault("METRICS_ADDR", ":9090"),
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			LogFormat:   envOrDefault("LOG_FORMAT", "json"),
		},
		Decoder: DecoderConfig{
			Backend:       envOrDefault("DECODER_BACKEND", BackendMock),
			SampleRateHz:  envInt("DECODER_SAMPLE_RATE_HZ", 16000),
			LanguageCode:  envOrDefault("DECODER_LANGUAGE_CODE", "en-US"),
			ChunkBytes:    envInt("DECODER_CHUNK_BYTES", 4096),
			BufferSamples: envInt("DECODER_BUFFER_SAMPLES", 1600),
			InputFormat:   envOrDefault("DECODER_INPUT_FORMAT", "s16le"),
		},
		Kafka: KafkaConfig{
			Enabled:        envBool("KAFKA_ENABLED", false),
			Brokers:        envList("KAFKA_BROKERS"),
			TopicUtterance: envOrDefault("KAFKA_TOPIC_UTTERANCE", "decode.hypothesis.utterance"),
			TopicFinal:     envOrDefault("KAFKA_TOPIC_FINAL", "decode.hypothesis.final"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
