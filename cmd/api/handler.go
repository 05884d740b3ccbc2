package api

import (
	"net/http"
	"time"

	authUsecase "rfp-backend/internal/auth/usecase"
	ingestionDelivery "rfp-backend/internal/ingestion/delivery"
	rfpDelivery "rfp-backend/internal/rfp/delivery"
	vendorDelivery "rfp-backend/internal/vendors/delivery"
	"rfp-backend/pkg/config"
	"rfp-backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handler owns the HTTP surface of the procurement service.
type Handler struct {
	config           *config.Config
	logger           *zap.Logger
	tokenUsecase     authUsecase.TokenUsecase
	rfpHandler       *rfpDelivery.RFPHandler
	vendorHandler    *vendorDelivery.VendorHandler
	ingestionHandler *ingestionDelivery.IngestionHandler
	settingsHandler  *SettingsHandler
}

type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Tokens    authUsecase.TokenUsecase // nil disables auth
	RFP       *rfpDelivery.RFPHandler
	Vendor    *vendorDelivery.VendorHandler
	Ingestion *ingestionDelivery.IngestionHandler
	Settings  *SettingsHandler
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		config:           deps.Config,
		logger:           logger.OrNop(deps.Logger).Named("http"),
		tokenUsecase:     deps.Tokens,
		rfpHandler:       deps.RFP,
		vendorHandler:    deps.Vendor,
		ingestionHandler: deps.Ingestion,
		settingsHandler:  deps.Settings,
	}
}

// Engine builds the gin router with middleware and routes.
func (h *Handler) Engine() *gin.Engine {
	if h.config != nil && h.config.GinMode != "" {
		gin.SetMode(h.config.GinMode)
	}

	r := gin.New()
	r.Use(requestLogger(h.logger), gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h)
	return r
}

func (h *Handler) Start(addr string) error {
	h.logger.Info("server starting", zap.String("addr", addr))
	return h.Engine().Run(addr)
}

// requestLogger tags each request with an id and logs it once it completes.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
