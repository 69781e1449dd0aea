package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"speech-decode-service/internal/audio"
	"speech-decode-service/internal/config"
	"speech-decode-service/internal/events"
	"speech-decode-service/internal/observability"
	"speech-decode-service/internal/observability/logging"
	"speech-decode-service/internal/observability/metrics"
	"speech-decode-service/internal/service/decode"
	"speech-decode-service/internal/service/engine"
	"speech-decode-service/internal/service/hypothesis"
)

func main() {
	filePath := flag.String("file", "", "decode a raw PCM16 file and exit instead of running live")
	flag.Parse()

	cfg := config.Load()
	logging.Init(logging.Config{
		Level:  cfg.Service.LogLevel,
		Format: cfg.Service.LogFormat,
	})

	// Kafka publisher with separate topics for per-utterance and final
	// hypotheses. Disabled config turns it into a log-only publisher.
	publisher := events.New(&events.Config{
		Enabled:        cfg.Kafka.Enabled,
		Brokers:        cfg.Kafka.Brokers,
		TopicUtterance: cfg.Kafka.TopicUtterance,
		TopicFinal:     cfg.Kafka.TopicFinal,
		Principal:      cfg.Service.Principal,
	})
	defer publisher.Close()

	ctx := context.Background()
	eng, err := engine.New(ctx, cfg.Decoder)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Decoder.Backend).Msg("Engine initialization failed")
	}

	decoder := decode.New(engine.NewSession(eng), publisher, cfg.Decoder.ChunkBytes)
	defer func() {
		if err := decoder.Close(); err != nil {
			log.Error().Err(err).Msg("Decoder close failed")
		}
	}()

	if *filePath != "" {
		runFile(decoder, *filePath)
		return
	}

	obsServer := observability.NewServer(cfg.Service.MetricsAddr)
	obsServer.Start()

	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("Failed to listen")
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(observability.UnaryServerInterceptor(metrics.DefaultMetrics)),
		grpc.StreamInterceptor(observability.StreamServerInterceptor(metrics.DefaultMetrics)),
	)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)

	// Reflection for debugging tools like grpcurl
	reflection.Register(server)

	go func() {
		log.Info().Str("port", cfg.Service.GRPCPort).Msg("Speech decode service started")
		if err := server.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("gRPC serve failed")
		}
	}()

	runLive(decoder, cfg.Decoder)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("Shutting down")
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	decoder.StopLive()
	server.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Observability server shutdown failed")
	}
}

// runFile decodes one file and prints the accumulated hypothesis.
func runFile(decoder *decode.Decoder, path string) {
	done := make(chan struct{})
	err := decoder.DecodeFile(path, func(hyp *hypothesis.Hypothesis) {
		if hyp == nil {
			log.Info().Str("path", path).Msg("No speech recognized")
		} else {
			log.Info().
				Str("path", path).
				Str("text", hyp.Text).
				Int64("score", hyp.Score).
				Msg("Decode complete")
		}
		close(done)
	})
	if err != nil {
		log.Fatal().Err(err).Msg("File decode failed to start")
	}
	<-done
}

// runLive starts continuous decoding from stdin. Feed it raw audio with
// arecord, sox or cmd/audiofeed.
func runLive(decoder *decode.Decoder, cfg config.DecoderConfig) {
	format := audio.FormatPCM16
	if cfg.InputFormat == "f32le" {
		format = audio.FormatFloat32
	}
	src := audio.NewReaderSource(os.Stdin, cfg.BufferSamples, format)

	err := decoder.StartLive(src, func(hyp *hypothesis.Hypothesis) {
		log.Info().
			Str("text", hyp.Text).
			Int64("score", hyp.Score).
			Msg("Utterance recognized")
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Live decode failed to start")
	}
}
