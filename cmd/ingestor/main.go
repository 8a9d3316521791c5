package main

import (
	"context"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/config"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/database"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/messaging"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/repository"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/service"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(service.Deps{Repos: repository.New(db)})

	client, err := messaging.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		reqCtx, cancel := context.WithTimeout(ctx, config.AuditTimeout())
		defer cancel()
		if err := svcs.Ingest.FromMQTT(reqCtx, msg.Topic(), msg.Payload()); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("ingest failed")
		}
	}

	topic := config.MQTTTopic()
	if token := client.Subscribe(topic, 1, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", topic).Msg("ingestor running; Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("ingestor stopped")
}
