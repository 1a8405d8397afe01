package container

import (
	"go.uber.org/zap"

	"grape-bot/config"
	app "grape-bot/internal/application"
	"grape-bot/internal/domain/port"
	"grape-bot/internal/infrastructure/classifier"
	"grape-bot/internal/infrastructure/report"
	"grape-bot/internal/infrastructure/storage"
	"grape-bot/internal/infrastructure/vision"
)

type Container struct {
	Config      *config.Config
	Log         *zap.Logger
	UserService *app.UserService
	ScanService *app.ScanService
	Describer   port.PredictionDescriber
}

// New собирает сервисы приложения. Если repo == nil, используется хранилище в памяти.
func New(cfg *config.Config, log *zap.Logger, repo port.UserRepository) *Container {
	if log == nil {
		log = zap.NewNop()
	}
	if repo == nil {
		repo = storage.NewMemoryUserRepository()
	}

	mock := classifier.NewMockClassifier(
		classifier.WithDelay(cfg.Scan.Delay),
		classifier.WithLogger(log.Named("classifier")),
	)

	userService := app.NewUserService(repo)
	scanService := app.NewScanService(userService, newValidator(cfg, log), mock, log.Named("scan"), cfg.Scan.MaxUploadSize)

	return &Container{
		Config:      cfg,
		Log:         log,
		UserService: userService,
		ScanService: scanService,
		Describer:   report.NewTextDescriber(),
	}
}

func newValidator(cfg *config.Config, log *zap.Logger) port.LeafValidator {
	if cfg.Scan.Validator == config.ValidatorGoCV {
		log.Info("using gocv leaf validator")
		return vision.NewGoCVValidator()
	}
	return vision.NewGreenRatioValidator()
}
