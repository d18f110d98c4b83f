// Package main is the entry point for the PancyMod Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyModGo/internal/audit"
	"github.com/PancyStudios/PancyModGo/internal/commands"
	"github.com/PancyStudios/PancyModGo/internal/commands/mod"
	"github.com/PancyStudios/PancyModGo/internal/commands/utils"
	"github.com/PancyStudios/PancyModGo/internal/events"
	"github.com/PancyStudios/PancyModGo/internal/ledger"
	"github.com/PancyStudios/PancyModGo/internal/metrics"
	"github.com/PancyStudios/PancyModGo/internal/moderation"
	"github.com/PancyStudios/PancyModGo/internal/punish"
	"github.com/PancyStudios/PancyModGo/pkg/config"
	"github.com/PancyStudios/PancyModGo/pkg/database"
	"github.com/PancyStudios/PancyModGo/pkg/discord"
	"github.com/PancyStudios/PancyModGo/pkg/errors"
	"github.com/PancyStudios/PancyModGo/pkg/logger"
	"github.com/PancyStudios/PancyModGo/pkg/mqtt"
	"github.com/PancyStudios/PancyModGo/pkg/web"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook, cfg.LogsDir)
	defer log.Close()

	logger.System(fmt.Sprintf("Iniciando PancyMod Go %s (%s)...", config.Version, config.BuildTime), "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler. It exits the process right after this
	// callback, so only close what must not be left half-written.
	var discordClient *discord.ExtendedClient
	var store ledger.Store
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			_ = discordClient.Stop()
		}
		if store != nil {
			_ = store.Close()
		}
	})
	defer errors.Get().Stop()

	// Initialize database (only needed for the mongo ledger)
	var db *database.Database
	if cfg.UsesMongo() {
		db, err = database.Init(cfg.MongoDBURL, cfg.DBName)
		if err != nil {
			logger.Critical(fmt.Sprintf("Error connecting to database: %v", err), "Main")
			os.Exit(1)
		}
	}

	// Open the warning ledger
	openCtx, cancelOpen := context.WithTimeout(context.Background(), 30*time.Second)
	store, err = ledger.Open(openCtx, ledger.Config{
		Driver: cfg.LedgerDriver,
		Path:   cfg.LedgerPath,
	}, db)
	cancelOpen()
	if err != nil {
		logger.Critical(fmt.Sprintf("No se pudo abrir el ledger (%s): %v", cfg.LedgerDriver, err), "Main")
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// Initialize MQTT
	var broker *mqtt.MqttCommunicator
	if cfg.MQTTEnabled {
		mqttClientID := "pancymod"
		if !cfg.IsProd() {
			mqttClientID = "pancymod_canary"
		}
		broker = mqtt.Init(cfg.MQTTHost, cfg.MQTTPort, cfg.MQTTUser, cfg.MQTTPassword, mqttClientID)
	}

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	surface := discord.NewModerationSurface(discordClient.Session)

	var sinks []audit.Sink
	if broker != nil {
		sinks = append(sinks, audit.NewMQTTSink(broker, audit.DefaultTopic))
	}
	resolver := audit.NewStaticResolver(cfg.AuditChannels, cfg.AuditDefaultChannel)
	notifier := audit.NewNotifier(
		resolver,
		discord.NewChannelSender(discordClient.Session),
		audit.DefaultTimeout,
		m,
		sinks...,
	)

	service := moderation.NewService(store, punish.NewExecutor(surface, cfg.ModerationTimeout, m), notifier, m)

	if broker != nil {
		broker.On(moderation.HistoryTopic, service.HistoryRequest)
		broker.On(moderation.WarningsTopic, service.WarningsRequest)
	}

	utilsDeps := utils.Deps{Ledger: service}
	if broker != nil {
		utilsDeps.Broker = broker
	}

	// Register commands and events
	commands.RegisterAll(discordClient, mod.Deps{
		Service:   service,
		Moderator: surface,
		Timeout:   cfg.ModerationTimeout + 5*time.Second,
	}, utilsDeps)
	events.RegisterAll(discordClient, resolver)

	// Initialize web server
	webServer, err := web.NewServer(cfg.LogsWebServerHook, cfg.AllowedHostRegex)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating web server: %v", err), "Main")
		os.Exit(1)
	}
	apiDeps := web.APIDeps{
		Moderation: service,
		Bot:        discordClient,
		Gatherer:   prometheus.DefaultGatherer,
	}
	if broker != nil {
		apiDeps.Broker = broker
	}
	web.SetupAPIRoutes(webServer, apiDeps)
	webServer.StartAsync(cfg.Port)

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}

	logger.Success("PancyMod Go iniciado correctamente!", "Main")

	// Wait for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-stop

	logger.System("Apagando PancyMod Go...", "Main")

	// No new commands after this point
	if err := discordClient.Stop(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando la sesión de Discord: %v", err), "Main")
	}

	// Pending audit deliveries finish on their own timeout
	notifier.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
	}

	if broker != nil {
		broker.Destroy()
	}

	if err := store.Close(); err != nil {
		logger.Warn(fmt.Sprintf("Error cerrando el ledger: %v", err), "Main")
	}

	if db != nil {
		if err := db.Disconnect(); err != nil {
			logger.Warn(fmt.Sprintf("Error desconectando la base de datos: %v", err), "Main")
		}
	}
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}
