package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adactor "shellyboard/internal/adapter/actor"
	"shellyboard/internal/config"
	"shellyboard/internal/core/actor"
	"shellyboard/internal/core/domain"
	"shellyboard/internal/ha"
	"shellyboard/internal/server"
	"shellyboard/internal/util/actorutil"

	pactor "github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/carlmjohnson/versioninfo"
	"github.com/reugn/go-quartz/job"
	"github.com/reugn/go-quartz/quartz"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Println("shutting down gracefully, press Ctrl+C again to force")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

func main() {

	// load and print config
	cfg, err := initConfig()
	if err != nil {
		slog.Error("config errors", "error", err)
		return
	}
	safePrintConfig(*cfg)
	slog.Info("shellyboard", "version", versioninfo.Short())

	// zap logger
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)

	logger := zap.Must(zapCfg.Build())

	// init actor system
	as := actorutil.NewActorSystemWithZapLogger(logger)
	ctx := as.Root

	defer logger.Sync()

	props := pactor.PropsFromProducer(func() pactor.Actor {
		return actor.NewMasterActor(*cfg, haActorProvider(cfg, logger), mqttActorProvider(cfg, logger), logger)
	})
	pid, err := ctx.SpawnNamed(props, domain.ACTOR_ID_MASTER)
	if err != nil {
		return
	}

	// periodic board refresh
	if cfg.RefreshIntervalMillis > 0 {
		schedCtx, cancelSched := context.WithCancel(context.Background())
		defer cancelSched()

		sched := quartz.NewStdScheduler()
		sched.Start(schedCtx)

		refreshJob := job.NewFunctionJob(func(context.Context) (int, error) {
			ctx.Send(pid, domain.LoadBoardRequest{})
			return 0, nil
		})
		interval := time.Duration(cfg.RefreshIntervalMillis) * time.Millisecond
		err = sched.ScheduleJob(quartz.NewJobDetail(refreshJob, quartz.NewJobKey("board_refresh")),
			quartz.NewSimpleTrigger(interval))
		if err != nil {
			logger.Error("could not schedule board refresh", zap.Error(err))
		}
	}

	server := server.NewServer(*cfg, ctx, pid)
	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(server, done)

	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Println("Graceful shutdown complete.")

	ctx.Stop(pid)
	as.Shutdown()
}

func initConfig() (*config.Config, error) {

	// alias PORT => SHELLYBOARD_PORT
	if port := os.Getenv("PORT"); port != "" {
		os.Setenv("SHELLYBOARD_PORT", port)
	}

	setConfigDefaults()

	viper.SetEnvPrefix("shellyboard")
	viper.AutomaticEnv()

	// if defined, try to load config from yaml file
	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			viper.SetConfigFile(cfgFile)

			err = viper.ReadInConfig()
			if err != nil {
				slog.Error("Error reading config file", "error", err)
			}
		}
	}

	var cfg config.Config

	err := viper.Unmarshal(&cfg)
	if err != nil {
		return nil, err
	}

	// parse log level
	switch viper.GetString("log_level") {
	case "trace":
		cfg.LogLevel = zap.DebugLevel
	case "debug":
		cfg.LogLevel = zap.DebugLevel
	case "info":
		cfg.LogLevel = zap.InfoLevel
	case "error":
		cfg.LogLevel = zap.ErrorLevel
	case "warn":
		cfg.LogLevel = zap.WarnLevel
	case "fatal":
		cfg.LogLevel = zap.FatalLevel
	default:
		cfg.LogLevel = zap.InfoLevel
	}

	if cfg.HomeAssistant.Host == "" {
		return nil, errors.New("config param homeassistant.host is required")
	}
	if cfg.HomeAssistant.AccessToken == "" {
		return nil, errors.New("config param homeassistant.access_token is required")
	}

	if cfg.MQTT.Enable {
		// check and fix base topic
		baseTopic, err := config.CheckMQTTTopic(cfg.MQTT.BaseTopic)
		if err != nil {
			return nil, errors.New("invalid base topic. can only contain letters, numbers and underscores")
		}
		cfg.MQTT.BaseTopic = baseTopic

		if cfg.MQTT.Host == "" {
			return nil, errors.New("config param mqtt.host is required when mqtt is enabled")
		}
	}

	// check bounds
	if cfg.RefreshIntervalMillis > 0 && cfg.RefreshIntervalMillis < 5000 {
		return nil, errors.New("config param refresh_interval_millis should be 0 (disabled) or >= 5000")
	}

	return &cfg, nil
}

func haActorProvider(cfg *config.Config, logger *zap.Logger) actor.HomeAssistantActorProvider {
	return func() *adactor.HomeAssistantActor {
		return adactor.NewHomeAssistantActor(ha.NewClient(cfg.HomeAssistant, logger), logger)
	}
}

func mqttActorProvider(cfg *config.Config, logger *zap.Logger) actor.MQTTActorProvider {
	return func(es *eventstream.EventStream) *adactor.MQTTActor {
		return adactor.NewMQTTActor(cfg, es, logger)
	}
}

func setConfigDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("port", 8080)
	viper.SetDefault("homeassistant.port", 8123)
	viper.SetDefault("homeassistant.request_timeout_millis", 10000)
	viper.SetDefault("mqtt.enable", false)
	viper.SetDefault("mqtt.base_topic", "shellyboard")
	viper.SetDefault("refresh_interval_millis", 60000)
	viper.SetDefault("sort_locale", "en")
}

func safePrintConfig(cfg config.Config) {
	cfg.HomeAssistant.AccessToken = "*redacted*"
	cfg.MQTT.Username = "*redacted*"
	cfg.MQTT.Password = "*redacted*"
	slog.Info("Using", "config", cfg)
}
