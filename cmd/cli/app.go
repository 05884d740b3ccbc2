package cli

import (
	"context"
	"fmt"
	"time"

	api "rfp-backend/cmd/api"
	authUsecase "rfp-backend/internal/auth/usecase"
	"rfp-backend/internal/extraction"
	"rfp-backend/internal/ingestion"
	ingestionDelivery "rfp-backend/internal/ingestion/delivery"
	rfpDelivery "rfp-backend/internal/rfp/delivery"
	rfpdomain "rfp-backend/internal/rfp/domain"
	rfprepo "rfp-backend/internal/rfp/repository"
	rfpUsecase "rfp-backend/internal/rfp/usecase"
	vendorDelivery "rfp-backend/internal/vendors/delivery"
	vendordomain "rfp-backend/internal/vendors/domain"
	vendorrepo "rfp-backend/internal/vendors/repository"
	vendorUsecase "rfp-backend/internal/vendors/usecase"
	"rfp-backend/pkg/ai"
	"rfp-backend/pkg/cache"
	"rfp-backend/pkg/config"
	"rfp-backend/pkg/database"
	"rfp-backend/pkg/gmail"
	"rfp-backend/pkg/imap"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const recommendationCachePrefix = "rfp:recommendation:"

// models lists every table the service owns, in dependency order.
func models() []any {
	return []any{&vendordomain.Vendor{}, &rfpdomain.RFP{}, &rfpdomain.Item{}, &rfpdomain.Proposal{}}
}

// app holds the wired services shared by every command.
type app struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB

	vendorRepo   vendorrepo.VendorRepository
	rfpRepo      rfprepo.RFPRepository
	proposalRepo rfprepo.ProposalRepository

	completer       ai.Completer
	vendorUsecase   vendorUsecase.VendorUsecase
	rfpUsecase      rfpUsecase.RFPUsecase
	proposalUsecase rfpUsecase.ProposalUsecase
	ingestion       *ingestion.Service

	closers []func() error
}

// openDB connects and migrates. Commands that only need storage stop here.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db, cfg.DatabaseDriver, models()...); err != nil {
		return nil, err
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		config:       cfg,
		logger:       log,
		db:           db,
		vendorRepo:   vendorrepo.NewVendorRepository(db),
		rfpRepo:      rfprepo.NewRFPRepository(db),
		proposalRepo: rfprepo.NewProposalRepository(db),
	}
	if sqlDB, err := db.DB(); err == nil {
		a.closers = append(a.closers, sqlDB.Close)
	}

	a.completer, err = ai.NewCompleter(ctx, ai.Config{
		Provider:      ai.ProviderType(cfg.AIProvider),
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		OllamaModel:   cfg.OllamaModel,
	}, log)
	if err != nil {
		// extraction and recommendation report upstream errors until fixed
		log.Warn("completion provider unavailable", zap.Error(err))
		a.completer = nil
	} else {
		log.Info("completion provider ready", zap.String("provider", cfg.AIProvider))
	}

	extractor := extraction.NewService(a.completer, cfg.CompletionTimeout, log)
	recommender := rfpUsecase.NewRecommendationEngine(a.completer, cfg.CompletionTimeout, log)
	if cfg.RedisURL != "" {
		if rc := a.openCache(ctx); rc != nil {
			recommender.WithCache(rc, cfg.RecommendationCacheTTL)
		}
	}

	a.vendorUsecase = vendorUsecase.NewVendorUsecase(a.vendorRepo, log)
	a.rfpUsecase = rfpUsecase.NewRFPUsecase(a.rfpRepo, a.proposalRepo, a.vendorRepo, extractor, recommender, log)
	a.proposalUsecase = rfpUsecase.NewProposalUsecase(a.rfpRepo, a.proposalRepo, a.vendorRepo, log)

	if cfg.GmailConfigured() {
		sender, err := gmail.NewSender(ctx, gmail.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			From:         cfg.MailFrom,
		}, log)
		if err != nil {
			log.Warn("gmail sender unavailable", zap.Error(err))
		} else {
			a.rfpUsecase.SetMailSender(sender)
		}
	} else {
		log.Info("gmail not configured, rfp invitations disabled")
	}

	subjects, err := ingestion.NewSubjectParser(cfg.SubjectPatterns)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("subject patterns: %w", err)
	}

	var store ingestion.MailStore
	if cfg.IMAPConfigured() {
		store = ingestion.IMAPStore(imap.NewStore(imap.Config{
			Host:     cfg.IMAPHost,
			Port:     cfg.IMAPPort,
			Username: cfg.IMAPUser,
			Password: cfg.IMAPPassword,
			Mailbox:  cfg.IMAPMailbox,
			Timeout:  cfg.IMAPTimeout,
		}, log))
	} else {
		log.Info("imap not configured, ingestion disabled")
	}
	a.ingestion = ingestion.NewService(store, a.vendorRepo, a.rfpRepo, a.proposalRepo, extractor, subjects, log)
	a.ingestion.SetDefaultLimit(cfg.IngestLimit)

	return a, nil
}

func (a *app) openCache(ctx context.Context) *cache.RedisCache {
	rc, err := cache.NewRedisCache(a.config.RedisURL, recommendationCachePrefix)
	if err != nil {
		a.logger.Warn("recommendation cache disabled", zap.Error(err))
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		a.logger.Warn("redis unreachable, recommendation cache disabled", zap.Error(err))
		_ = rc.Close()
		return nil
	}

	a.closers = append(a.closers, rc.Close)
	return rc
}

// httpHandler builds the API server on top of the wired services.
func (a *app) httpHandler() *api.Handler {
	deps := api.Deps{
		Config:    a.config,
		Logger:    a.logger,
		RFP:       rfpDelivery.NewRFPHandler(a.rfpUsecase, a.proposalUsecase),
		Vendor:    vendorDelivery.NewVendorHandler(a.vendorUsecase),
		Ingestion: ingestionDelivery.NewIngestionHandler(a.ingestion),
		Settings:  api.NewSettingsHandler(a.config, a.completer),
	}
	if a.config.JWTSecret != "" {
		deps.Tokens = authUsecase.NewTokenUsecase(a.config.JWTSecret)
	} else {
		a.logger.Warn("JWT_SECRET not set, /api/rfp is unauthenticated")
	}
	return api.NewHandler(deps)
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("shutdown", zap.Error(err))
		}
	}
}
