package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/audit"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/catalog"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/chat"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/cloud"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/config"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/database"
	httpHandlers "github.com/ANIKETSHETTY47/drive-savings-calculator/internal/http"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/messaging"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/repository"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var repos *repository.Repos
	if config.DBDSN() != "" {
		db, err := database.Connect()
		if err != nil {
			log.Error().Err(err).Msg("db connect failed; history and sql audit disabled")
		} else {
			defer db.Close()
			repos = repository.New(db)
		}
	}

	sinks, closeSinks := buildSinks(ctx, config.AuditSinks(), repos)
	defer closeSinks()
	var sink audit.Sink
	if len(sinks) > 0 {
		sink = sinks
	}
	recorder := audit.NewRecorder(sink, config.AuditQueueSize(), config.AuditTimeout())

	deps := service.Deps{
		Repos:        repos,
		Recorder:     recorder,
		Strict:       config.StrictValidation(),
		HistoryLimit: config.HistoryLimit(),
		Chat: chat.New(chat.Config{
			APIKey:   config.OpenAIAPIKey(),
			BaseURL:  config.OpenAIBaseURL(),
			Model:    config.OpenAIModel(),
			Language: config.ChatLanguage(),
			Timeout:  config.ChatTimeout(),
		}),
		Catalog: catalog.New(catalog.Config{
			Host:    config.MeiliHost(),
			APIKey:  config.MeiliAPIKey(),
			Index:   config.MeiliIndex(),
			Timeout: config.SearchTimeout(),
		}),
	}
	if config.UseCloudServices() {
		s3c, err := cloud.NewS3Client(ctx, config.AWSRegion(), config.S3Bucket())
		if err != nil {
			log.Error().Err(err).Msg("s3 init failed; reports served inline")
		} else {
			deps.Archive = s3c
		}
	}

	app := httpHandlers.NewApp(service.New(deps))

	addr := config.APIAddr()
	go func() {
		log.Info().Str("addr", addr).Strs("auditSinks", config.AuditSinks()).Msg("api listening")
		if err := app.Listen(addr); err != nil {
			log.Error().Err(err).Msg("server exit")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := recorder.Close(drainCtx); err != nil {
		log.Error().Err(err).Msg("audit queue not drained")
	}
}

// buildSinks opens every configured audit sink. A sink that cannot be opened
// is logged and left out.
func buildSinks(ctx context.Context, names []string, repos *repository.Repos) (audit.Multi, func()) {
	var sinks audit.Multi
	var closers []func()
	for _, name := range names {
		switch name {
		case "postgres":
			if repos == nil {
				log.Warn().Msg("postgres audit sink configured without DB_DSN")
				continue
			}
			sinks = append(sinks, repos)
		case "dynamodb":
			c, err := cloud.NewDynamoDBClient(ctx, config.AWSRegion(), config.DynamoDBTable())
			if err != nil {
				log.Error().Err(err).Msg("dynamodb audit sink disabled")
				continue
			}
			sinks = append(sinks, c)
		case "sns":
			if config.SNSTopicArn() == "" {
				log.Warn().Msg("sns audit sink configured without AWS_SNS_TOPIC_ARN")
				continue
			}
			c, err := cloud.NewSNSClient(ctx, config.AWSRegion(), config.SNSTopicArn())
			if err != nil {
				log.Error().Err(err).Msg("sns audit sink disabled")
				continue
			}
			sinks = append(sinks, c)
		case "mqtt":
			client, err := messaging.Connect(config.MQTTBroker(), config.MQTTClientID())
			if err != nil {
				log.Error().Err(err).Msg("mqtt audit sink disabled")
				continue
			}
			closers = append(closers, func() { client.Disconnect(250) })
			sinks = append(sinks, messaging.NewPublisher(client, config.MQTTTopic()))
		default:
			log.Warn().Str("sink", name).Msg("unknown audit sink")
		}
	}
	return sinks, func() {
		for _, c := range closers {
			c()
		}
	}
}
