// Package main is the entry point for the Dotmini MCX desktop app.
package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"dotmini-mcx/application"
	"dotmini-mcx/core/eventbus"
	"dotmini-mcx/domain/history"
	"dotmini-mcx/domain/license"
	"dotmini-mcx/domain/settings"
	"dotmini-mcx/infrastructure/config"
	"dotmini-mcx/infrastructure/inference"
	"dotmini-mcx/infrastructure/logging"
	"dotmini-mcx/infrastructure/repository"
	"dotmini-mcx/presentation"
	"dotmini-mcx/resources"
)

const appID = "com.dotminitech.mcx"

func main() {
	cfg := config.Load()

	// Initialize logging (dev: console only, prod: rotating file)
	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel, slog.LevelInfo)
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()

	logger.Info("Starting Dotmini MCX", "version", presentation.AppVersion)

	ctx := context.Background()

	// Settings
	settingsRepo := repository.NewFileSettingsRepository(cfg.ResolveSettingsPath(logging.AppDir()))
	userSettings, err := settingsRepo.Load(ctx)
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", "path", settingsRepo.Path(), "error", err)
		userSettings = settings.Default()
	}

	// License
	licenseManager := license.NewManager(cfg.LicenseKey, settingsRepo)
	licensed, err := licenseManager.IsValid(ctx)
	if err != nil {
		logger.Warn("Failed to check stored license", "error", err)
	}

	// Initialize Fyne app
	fyneApp := app.NewWithID(appID)
	fyneApp.SetIcon(resources.AppIcon())
	fyneApp.Settings().SetTheme(presentation.ThemeFor(userSettings))

	splash := presentation.NewSplashWindow(fyneApp)
	splash.Show()

	var (
		svc        *services
		mainWindow *presentation.MainWindow
		startup    sync.WaitGroup
	)

	openMain := func(s *settings.Settings) {
		mainWindow = presentation.NewMainWindow(&presentation.MainWindowConfig{
			App:          fyneApp,
			Bridge:       svc.bridge,
			Logger:       logger,
			SettingsRepo: settingsRepo,
			Settings:     s,
			History:      svc.history,
		})
		mainWindow.Show()
	}

	showFirstWindow := func() {
		if licensed {
			openMain(userSettings)
		} else {
			logger.Info("No valid license stored, asking for key")
			presentation.ShowLicenseDialog(&presentation.LicenseDialogConfig{
				App:     fyneApp,
				Manager: licenseManager,
				Logger:  logger,
				OnActivated: func() {
					// Activation may have stored the key; reload so closing the window keeps it.
					s, err := settingsRepo.Load(ctx)
					if err != nil {
						s = userSettings
					}
					openMain(s)
				},
				OnQuit: func() {
					logger.Info("License not provided, exiting")
					fyneApp.Quit()
				},
			})
		}
		splash.Close()
	}

	fyneApp.Lifecycle().SetOnStarted(func() {
		startup.Add(1)
		go func() {
			defer startup.Done()
			svc = startServices(ctx, cfg, logger, splash)
			fyne.Do(showFirstWindow)
		}()
	})

	fyneApp.Run()
	startup.Wait()

	if mainWindow != nil {
		mainWindow.Cleanup()
	}

	// Start shutdown timeout - force exit after 10 seconds if cleanup hangs
	go func() {
		time.Sleep(10 * time.Second)
		logger.Warn("Shutdown timeout, forcing exit")
		os.Exit(0)
	}()

	if svc != nil {
		svc.shutdown(logger)
	}

	logger.Info("Application shutdown complete")
}

// services holds everything built behind the splash window.
type services struct {
	history     *history.Service
	coordinator *application.Coordinator
	bridge      *presentation.UIEventBridge
	closers     []func()
}

// startServices opens run history and starts the job pipeline.
func startServices(ctx context.Context, cfg *config.Config, logger *slog.Logger, splash *presentation.SplashWindow) *services {
	svc := &services{}

	// Run history (MongoDB, falling back to memory)
	splash.SetStatus("Connecting to run history...")
	runRepo, closeRuns := openRunRepository(ctx, cfg, logger)
	svc.closers = append(svc.closers, closeRuns)
	svc.history = history.NewService(runRepo)

	splash.SetStatus("Starting classifier...")

	// Initialize event bus
	eventBus := eventbus.New(eventbus.DefaultBufferSize, eventbus.WithLogger(logger))
	svc.closers = append(svc.closers, eventBus.Close)

	// Initialize coordinator
	svc.coordinator = application.NewCoordinator(&application.CoordinatorConfig{
		EventBus: eventBus,
		Classifier: inference.NewONNXFactory(&inference.ONNXConfig{
			SharedLibraryPath: cfg.ORTLibraryPath,
			Logger:            logger,
		}),
		History: svc.history,
		Logger:  logger,
	})
	svc.coordinator.Start()

	// Initialize UI event bridge
	svc.bridge = presentation.NewUIEventBridge(&presentation.BridgeConfig{
		Coordinator: svc.coordinator,
		EventBus:    eventBus,
		Logger:      logger,
	})
	svc.closers = append(svc.closers, svc.bridge.Close)

	splash.SetStatus("Ready")
	return svc
}

// shutdown stops the coordinator, then releases resources in reverse order.
func (s *services) shutdown(logger *slog.Logger) {
	s.coordinator.Stop()
	if err := inference.Shutdown(); err != nil {
		logger.Warn("Failed to shut down ONNX Runtime", "error", err)
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openRunRepository connects to MongoDB, or returns an in-memory repository when
// MongoDB is disabled or unreachable. The returned function releases the connection.
func openRunRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (history.Repository, func()) {
	noop := func() {}
	if cfg.MongoDisabled {
		logger.Info("MongoDB disabled, run history kept in memory")
		return repository.NewMemoryRunRepository(), noop
	}

	mongoCfg := repository.DefaultMongoDBConfig()
	mongoCfg.URI = cfg.MongoURI
	mongoCfg.Database = cfg.MongoDatabase
	mongoCfg.PingTimeout = cfg.MongoTimeout
	mongoCfg.ServerSelectionTimeout = cfg.MongoTimeout

	mongoDB, err := repository.NewMongoDB(ctx, mongoCfg, logger)
	if err != nil {
		logger.Warn("MongoDB unavailable, run history kept in memory", "error", err)
		return repository.NewMemoryRunRepository(), noop
	}
	if err := mongoDB.EnsureIndexes(ctx); err != nil {
		logger.Warn("Failed to create MongoDB indexes", "error", err)
	}

	closeDB := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := mongoDB.Close(ctx); err != nil {
			logger.Warn("Failed to disconnect MongoDB", "error", err)
		}
	}
	return repository.NewMongoRunRepository(mongoDB, logger), closeDB
}
