package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/config"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/domain"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/messaging"
	"github.com/ANIKETSHETTY47/drive-savings-calculator/internal/savings"
)

const runs = 100

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	client, err := messaging.Connect(config.MQTTBroker(), config.MQTTClientID())
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	pub := messaging.NewPublisher(client, config.MQTTTopic())
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 0; i < runs; i++ {
		calc, err := randomCalculation(rng)
		if err != nil {
			log.Error().Err(err).Msg("encode calculation")
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := pub.Append(ctx, calc); err != nil {
			log.Error().Err(err).Msg("publish failed")
		}
		cancel()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Int("published", runs).Msg("simulation done")
}

// jitter scales v by a random factor in [0.8, 1.2).
func jitter(rng *rand.Rand, v float64) float64 {
	return v * (0.8 + rng.Float64()*0.4)
}

// randomCalculation perturbs a random preset of either engine.
func randomCalculation(rng *rand.Rand) (domain.Calculation, error) {
	if rng.Intn(2) == 0 {
		presets := savings.FlatRatePresets()
		keys := make([]string, 0, len(presets))
		for k := range presets {
			keys = append(keys, k)
		}
		cfg := presets[keys[rng.Intn(len(keys))]].MotorConfiguration
		cfg.HPPerMotor = jitter(rng, cfg.HPPerMotor)
		cfg.OperationHours = jitter(rng, cfg.OperationHours)
		cfg.ElectricityRate = jitter(rng, cfg.ElectricityRate)
		return domain.NewCalculation(domain.KindFlatRate, cfg, savings.FlatRate(cfg))
	}

	profiles := savings.LoadProfilePresets()
	keys := make([]string, 0, len(profiles))
	for k := range profiles {
		keys = append(keys, k)
	}
	cfg := domain.LoadProfileConfiguration{
		Motors:      float64(1 + rng.Intn(4)),
		HP:          jitter(rng, 100),
		Efficiency:  0.95,
		Voltage:     460,
		Hours:       jitter(rng, 5000),
		RatePerKWh:  jitter(rng, 0.12),
		Investment:  jitter(rng, 15000),
		LoadProfile: profiles[keys[rng.Intn(len(keys))]],
	}
	return domain.NewCalculation(domain.KindLoadProfile, cfg, savings.LoadProfile(cfg))
}
