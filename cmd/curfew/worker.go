package main

import (
	"context"
	"time"

	"github.com/septivank/petdoor-curfew-worker/internal/battery"
	"github.com/septivank/petdoor-curfew-worker/internal/config"
	"github.com/septivank/petdoor-curfew-worker/internal/db"
	"github.com/septivank/petdoor-curfew-worker/internal/mq"
	"github.com/septivank/petdoor-curfew-worker/internal/mqttstate"
	"github.com/septivank/petdoor-curfew-worker/internal/notify"
	"github.com/septivank/petdoor-curfew-worker/internal/repository"
	"github.com/septivank/petdoor-curfew-worker/internal/season"
	"github.com/septivank/petdoor-curfew-worker/internal/service"
	"github.com/septivank/petdoor-curfew-worker/internal/sunapi"
	"github.com/septivank/petdoor-curfew-worker/internal/surepet"
	"github.com/septivank/petdoor-curfew-worker/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ProvidePolicy builds the season table from configuration
func ProvidePolicy(cfg *config.Config) (*season.Policy, error) {
	return cfg.Policy()
}

// ProvideInterpreter creates the battery interpreter for the configured encoding
func ProvideInterpreter(cfg *config.Config) (*battery.Interpreter, error) {
	enc, err := cfg.BatteryEncoding()
	if err != nil {
		return nil, err
	}
	return battery.NewInterpreter(enc, cfg.Battery.AlertThreshold)
}

// ProvideSunClient creates the sun-time source client
func ProvideSunClient(cfg *config.Config, logger *zap.Logger) *sunapi.Client {
	return sunapi.NewClient(cfg.Sun.APIURL, cfg.HTTP.Timeout, logger.Named("sunapi"))
}

// ProvideDeviceLogin creates the device API client and binds the account credentials
func ProvideDeviceLogin(cfg *config.Config, logger *zap.Logger) service.DeviceLogin {
	client := surepet.NewClient(cfg.Device.APIURL, cfg.Device.ClientDeviceID, cfg.HTTP.Timeout, logger.Named("surepet"))
	return service.SurepetLogin(client, surepet.Credentials{
		Email:    cfg.Credentials.Email,
		Password: cfg.Credentials.Password,
	})
}

// ProvideNotifier creates the alert mailer, or nil when mail is not configured
func ProvideNotifier(cfg *config.Config, logger *zap.Logger) service.Notifier {
	if !cfg.MailEnabled() {
		logger.Info("mail not configured, low battery alerts will only be logged")
		return nil
	}
	return notify.NewMailer(notify.MailConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Login:    cfg.Mail.Login,
		Password: cfg.Mail.Password,
		Sender:   cfg.Mail.Sender,
		Receiver: cfg.Mail.Receiver,
		Timeout:  cfg.HTTP.Timeout,
	}, logger.Named("notify"))
}

// ProvideJournal creates the Postgres run journal, or nil without DATABASE_URL
func ProvideJournal(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (service.Journal, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}

	pool, err := db.NewPool(lc, logger, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	repo := repository.NewRepository(pool)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := repo.EnsureSchema(ctx); err != nil {
				logger.Warn("journal schema unavailable, runs will not be journaled", zap.Error(err))
			}
			return nil
		},
	})

	return repo, nil
}

// ProvideSinks connects the optional RabbitMQ and MQTT event sinks.
// A sink that cannot connect is skipped; events are best-effort.
func ProvideSinks(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) []service.EventSink {
	var sinks []service.EventSink

	if cfg.RabbitMQ.URL != "" {
		if publisher, err := newRabbitPublisher(lc, logger, cfg); err != nil {
			logger.Warn("rabbitmq events disabled", zap.Error(err))
		} else {
			sinks = append(sinks, publisher)
		}
	}

	if cfg.MQTT.Broker != "" {
		client := mqttstate.NewClient(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.TopicRoot, 10*time.Second, logger.Named("mqtt"))
		if err := client.Connect(); err != nil {
			logger.Warn("mqtt state publishing disabled", zap.Error(err))
		} else {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					client.Disconnect()
					return nil
				},
			})
			sinks = append(sinks, client)
		}
	}

	return sinks
}

func newRabbitPublisher(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Publisher, error) {
	conn, err := mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	publisher, err := mq.NewPublisher(conn, cfg.RabbitMQ.Exchange, logger.Named("rabbitmq"))
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})

	return publisher, nil
}

// ProvideCurfewService creates the curfew service
func ProvideCurfewService(
	cfg *config.Config,
	logger *zap.Logger,
	login service.DeviceLogin,
	sun *sunapi.Client,
	notifier service.Notifier,
	journal service.Journal,
	sinks []service.EventSink,
	policy *season.Policy,
	interpreter *battery.Interpreter,
) *service.CurfewService {
	return service.NewCurfewService(service.Deps{
		Login:       login,
		Sun:         sun,
		Notifier:    notifier,
		Journal:     journal,
		Sinks:       sinks,
		Policy:      policy,
		Season:      season.Season(cfg.Season),
		Interpreter: interpreter,
		Validator:   validator.NewValidator(),
		Converter:   cfg.LocalConverter,
		Coordinates: sunapi.Coordinates{
			Latitude:  cfg.Sun.Latitude,
			Longitude: cfg.Sun.Longitude,
		},
		NameMarker: cfg.Device.NameMarker,
		Logger:     logger,
	})
}
