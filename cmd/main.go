package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homewatch/internal/handlers"
	"homewatch/internal/homeassistant"
	"homewatch/internal/logger"
	"homewatch/internal/repository"
	"homewatch/internal/server"
	"homewatch/internal/service"
	"homewatch/internal/telegram"

	"github.com/spf13/viper"

	_ "homewatch/docs" // swagger spec registration
)

const defaultMonitorTick = 300 * time.Second

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load config.yml
	if err := loadConfig(); err != nil {
		log.Fatalw("error reading config", "err", err)
	}

	// open DB
	db, err := openDB(log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Fatalw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	repos := repository.NewRepository(db)
	services := service.NewService(repos, service.Deps{
		Provider:         homeassistant.NewClient(viper.GetString("ha.url"), viper.GetString("ha.token")),
		Notifier:         telegram.NewSender(viper.GetString("telegram.token"), viper.GetString("telegram.chat_id")),
		Policy:           service.NewViperPolicy(viper.GetViper()),
		Log:              log,
		JWTSigningKey:    viper.GetString("jwt.signing_key"),
		LocalOffsetHours: viper.GetInt("monitor.local_utc_offset_hours"),
		BriefingHour:     viper.GetInt("monitor.briefing_hour"),
		Warmup:           viper.GetDuration("monitor.warmup"),
	})
	apiHandler := handlers.NewHandler(services, log)

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// start the proactive monitoring loop
	go services.Monitor.Run(ctx, monitorTick())

	// start HTTP server
	srv := &server.Server{}
	runHTTPServer(srv, viper.GetString("port"), apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, log)
}

func loadConfig() error {
	viper.AddConfigPath("configs") // configs/config.yml
	viper.SetConfigName("config")

	// secrets come from the environment, never the file
	_ = viper.BindEnv("ha.token", "HA_TOKEN")
	_ = viper.BindEnv("telegram.token", "TELEGRAM_BOT_TOKEN")
	_ = viper.BindEnv("telegram.chat_id", "ADMIN_CHAT_ID")
	_ = viper.BindEnv("jwt.signing_key", "JWT_SIGNING_KEY")

	if err := viper.ReadInConfig(); err != nil {
		return err
	}
	// the notification policy is re-read every cycle, so edits apply live
	viper.WatchConfig()
	return nil
}

func monitorTick() time.Duration {
	if d := viper.GetDuration("monitor.tick"); d > 0 {
		return d
	}
	return defaultMonitorTick
}

// openDB initializes the SQLite database using configuration.
func openDB(log *logger.Logger) (*sql.DB, error) {
	dbPath := viper.GetString("db.path")
	if dbPath == "" {
		log.Infow("db.path not set in config; using default file", "default", "homewatch.db")
		dbPath = "homewatch.db"
	}
	return repository.InitDB(dbPath)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		if port == "" {
			port = "8080"
		}
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop the monitoring loop
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalw("server forced to shutdown", "err", err)
	}
}
