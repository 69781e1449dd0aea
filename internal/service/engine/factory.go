package engine

import (
	"context"
	"fmt"

	"speech-decode-service/internal/config"
	"speech-decode-service/internal/service/engine/gcloud"
	"speech-decode-service/internal/service/engine/mock"
)

// New constructs the decode engine selected by cfg.Backend. An engine that
// fails to initialize fails the whole construction; there is no internal
// retry.
func New(ctx context.Context, cfg config.DecoderConfig) (Engine, error) {
	switch cfg.Backend {
	case "", config.BackendMock:
		return mock.New(), nil
	case config.BackendGoogle:
		return gcloud.New(ctx, gcloud.Options{
			SampleRateHz: cfg.SampleRateHz,
			LanguageCode: cfg.LanguageCode,
		})
	default:
		return nil, fmt.Errorf("unknown decoder backend %q", cfg.Backend)
	}
}
