package api

import (
	"alphafactory/internal/domain"
	"alphafactory/internal/logger"
	"alphafactory/internal/service"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApiHandler struct {
	BacktestService  service.BacktestService
	BenchmarkService service.BenchmarkService
	ReportService    service.ReportService
}

func (m ApiHandler) InitializeRouterEngine() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())
	router.Use(m.requestLoggerMiddleware)

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, map[string]string{"message": "welcome to alphafactory"})
	})
	router.POST("/backtest", m.backtest)
	router.POST("/benchmark", m.benchmark)

	return router
}

func (m ApiHandler) StartApi(port int) error {
	return m.InitializeRouterEngine().Run(fmt.Sprintf(":%d", port))
}

// errorStatusCode maps the engine's typed errors onto http codes. Anything
// unrecognized is a 500.
func errorStatusCode(err error) int {
	var (
		noData       domain.NoDataError
		insufficient domain.InsufficientDataError
		config       domain.ConfigurationError
		degenerate   domain.DegenerateSeriesError
	)
	switch {
	case errors.As(err, &noData):
		return http.StatusNotFound
	case errors.As(err, &config), errors.As(err, &insufficient):
		return http.StatusBadRequest
	case errors.As(err, &degenerate):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func returnErrorJson(err error, c *gin.Context) {
	returnErrorJsonCode(err, c, errorStatusCode(err))
}

func returnErrorJsonCode(err error, c *gin.Context, code int) {
	log := logger.FromContext(c.Request.Context())
	if code >= 500 {
		log.Errorw("request failed", "error", err.Error(), "status", code)
	} else {
		log.Warnw("request rejected", "error", err.Error(), "status", code)
	}
	c.AbortWithStatusJSON(code, gin.H{
		"error": err.Error(),
	})
}

// requestLoggerMiddleware tags every request with an id and puts a
// logger carrying it on the request context
func (m ApiHandler) requestLoggerMiddleware(c *gin.Context) {
	requestID := uuid.New().String()
	c.Set("requestID", requestID)
	c.Writer.Header().Set("X-Request-ID", requestID)

	log := logger.FromContext(c.Request.Context()).With(
		"requestID", requestID,
		"method", c.Request.Method,
		"route", c.Request.URL.Path,
	)
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), log))

	start := time.Now().UTC()
	c.Next()

	log.Infow("handled request",
		"status", c.Writer.Status(),
		"durationMs", time.Since(start).Milliseconds(),
		"ip", c.ClientIP(),
	)
}
