package config

import (
	"os"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SERVICE_PRINCIPAL", "GRPC_PORT", "METRICS_ADDR", "LOG_LEVEL", "LOG_FORMAT",
		"DECODER_BACKEND", "DECODER_SAMPLE_RATE_HZ", "DECODER_LANGUAGE_CODE",
		"DECODER_CHUNK_BYTES", "DECODER_BUFFER_SAMPLES", "DECODER_INPUT_FORMAT",
		"KAFKA_ENABLED", "KAFKA_BROKERS", "KAFKA_TOPIC_UTTERANCE", "KAFKA_TOPIC_FINAL",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Service.Principal != "svc-speech-decode" {
		t.Errorf("expected default principal 'svc-speech-decode', got %s", cfg.Service.Principal)
	}
	if cfg.Service.GRPCPort != "50051" {
		t.Errorf("expected default port '50051', got %s", cfg.Service.GRPCPort)
	}
	if cfg.Service.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics addr ':9090', got %s", cfg.Service.MetricsAddr)
	}

	if cfg.Decoder.Backend != BackendMock {
		t.Errorf("expected default backend 'mock', got %s", cfg.Decoder.Backend)
	}
	if cfg.Decoder.SampleRateHz != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Decoder.SampleRateHz)
	}
	if cfg.Decoder.LanguageCode != "en-US" {
		t.Errorf("expected default language 'en-US', got %s", cfg.Decoder.LanguageCode)
	}
	if cfg.Decoder.ChunkBytes != 4096 {
		t.Errorf("expected default chunk bytes 4096, got %d", cfg.Decoder.ChunkBytes)
	}
	if cfg.Decoder.BufferSamples != 1600 {
		t.Errorf("expected default buffer samples 1600, got %d", cfg.Decoder.BufferSamples)
	}
	if cfg.Decoder.InputFormat != "s16le" {
		t.Errorf("expected default input format 's16le', got %s", cfg.Decoder.InputFormat)
	}

	if cfg.Kafka.Enabled {
		t.Error("expected Kafka disabled by default")
	}
	if cfg.Kafka.TopicUtterance != "decode.hypothesis.utterance" {
		t.Errorf("unexpected default utterance topic %s", cfg.Kafka.TopicUtterance)
	}
	if cfg.Kafka.TopicFinal != "decode.hypothesis.final" {
		t.Errorf("unexpected default final topic %s", cfg.Kafka.TopicFinal)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DECODER_BACKEND", "gcloud")
	t.Setenv("DECODER_SAMPLE_RATE_HZ", "8000")
	t.Setenv("DECODER_CHUNK_BYTES", "2048")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")

	cfg := Load()

	if cfg.Decoder.Backend != BackendGoogle {
		t.Errorf("expected backend 'gcloud', got %s", cfg.Decoder.Backend)
	}
	if cfg.Decoder.SampleRateHz != 8000 {
		t.Errorf("expected sample rate 8000, got %d", cfg.Decoder.SampleRateHz)
	}
	if cfg.Decoder.ChunkBytes != 2048 {
		t.Errorf("expected chunk bytes 2048, got %d", cfg.Decoder.ChunkBytes)
	}
	if !cfg.Kafka.Enabled {
		t.Error("expected Kafka enabled")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("DECODER_SAMPLE_RATE_HZ", "not-a-number")
	t.Setenv("KAFKA_ENABLED", "not-a-bool")

	cfg := Load()

	if cfg.Decoder.SampleRateHz != 16000 {
		t.Errorf("expected fallback sample rate 16000, got %d", cfg.Decoder.SampleRateHz)
	}
	if cfg.Kafka.Enabled {
		t.Error("expected fallback Kafka disabled")
	}
}
