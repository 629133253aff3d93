// Package analysis exposes the capacity-factor analysis over HTTP.
package analysis

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kilianp07/h2cf/core/capacity"
	"github.com/kilianp07/h2cf/core/model"
)

// Runner runs one analysis.
type Runner interface {
	Run(in capacity.Input, p capacity.Params) (*capacity.Report, error)
}

// PriceTable is the optional price series of a request.
type PriceTable struct {
	Timestamps []time.Time `json:"timestamps"`
	Values     []float64   `json:"values"`
}

// Request is the body of POST /api/v1/capacity-factors. Params left out of
// the body keep the server defaults.
//
// Timestamps may carry any offset but months are cut in UTC:
// 2020-02-01T00:00:00+01:00 is 2020-01-31T23:00:00Z and counts toward
// January.
type Request struct {
	Params     capacity.Params      `json:"params"`
	Timestamps []time.Time          `json:"timestamps"`
	Flows      map[string][]float64 `json:"flows"`
	Units      []model.Unit         `json:"units"`
	Prices     *PriceTable          `json:"prices,omitempty"`
}

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// Handler serves analysis requests.
type Handler struct {
	runner   Runner
	defaults capacity.Params
}

// NewHandler returns a handler that fills missing parameters from defaults.
func NewHandler(r Runner, defaults capacity.Params) *Handler {
	return &Handler{runner: r, defaults: defaults}
}

// CapacityFactors handles POST /api/v1/capacity-factors.
func (h *Handler) CapacityFactors(c *gin.Context) {
	req := Request{Params: h.defaults}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: "INVALID_REQUEST", Message: err.Error()}})
		return
	}
	in := capacity.Input{
		Flows: model.FlowSeries{Timestamps: req.Timestamps, Flows: req.Flows},
		Units: req.Units,
	}
	if req.Prices != nil {
		in.Prices = &model.PriceSeries{Timestamps: req.Prices.Timestamps, Prices: req.Prices.Values}
	}
	rep, err := h.runner.Run(in, req.Params)
	if err != nil {
		if errors.Is(err, capacity.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: ErrorDetail{Code: "INVALID_INPUT", Message: err.Error()}})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// Health handles GET /healthz.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewRouter mounts the routes, including the Prometheus /metrics endpoint,
// and wraps them in a CORS handler allowing the given origins.
func NewRouter(h *Handler, origins []string, maxBody int64) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	if maxBody > 0 {
		router.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
			c.Next()
		})
	}
	router.GET("/healthz", Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api := router.Group("/api/v1")
	{
		api.POST("/capacity-factors", h.CapacityFactors)
	}
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: ErrorDetail{Code: "NOT_FOUND", Message: "not found"}})
	})
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(router)
}
