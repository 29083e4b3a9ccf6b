package api

import (
	"errors"
	"net/http"
	"time"

	"StockSage/internal/domain/models"
	domrepo "StockSage/internal/domain/repository"
	domsvc "StockSage/internal/domain/service"
	"StockSage/internal/usecase"
	xhttp "StockSage/pkg/http"
	xlogger "StockSage/pkg/logger"
	"StockSage/pkg/util"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the scoring engine over HTTP.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	scoring  *usecase.ScoringSystem
	base     domsvc.SpecSet
	profiles map[string]map[string]float64
	history  domrepo.HistoryStore
}

func NewAnalysisEchoHandler(
	logger *xlogger.Logger,
	scoring *usecase.ScoringSystem,
	base domsvc.SpecSet,
	profiles map[string]map[string]float64,
) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{
		logger:   logger,
		scoring:  scoring,
		base:     base,
		profiles: profiles,
	}
}

// SetHistory enables the analysis history endpoint.
func (h *AnalysisEchoHandler) SetHistory(s domrepo.HistoryStore) { h.history = s }

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.POST("/rank", h.Rank)
	g.GET("/rank/stream", h.RankStream)
	g.GET("/agents", h.Agents)
	g.GET("/history/:symbol", h.History)
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze scores a single symbol from the dataset in the request body.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	specs, err := h.specsFor(req.Profile, req.Agents)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}

	res, err := h.scoring.Orchestrator().Analyze(c.Request().Context(), req.Symbol, req.Dataset, specs)
	if err != nil {
		if models.IsConfigError(err) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
		}
		if errors.Is(err, models.ErrInsufficientData) {
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()).WithError(err))
		}
		h.logger.Error("analyze usecase error",
			xlogger.String("symbol", req.Symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Rank scores a batch of symbols and returns them best first.
func (h *AnalysisEchoHandler) Rank(c echo.Context) error {
	req := &models.RankRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	specs, err := h.specsFor(req.Profile, req.Agents)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	}

	results, err := h.scoring.AnalyzeMany(c.Request().Context(), req.Symbols, req.Datasets, specs, nil)
	if err != nil {
		if models.IsConfigError(err) {
			return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
		}
		h.logger.Error("rank usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if req.Threshold != nil {
		results = usecase.Rank(results, *req.Threshold)
	}
	return xhttp.ListResponse(c, results, int64(len(results)))
}

type agentStatus struct {
	Name    string  `json:"name"`
	Weight  float64 `json:"weight"`
	Enabled bool    `json:"enabled"`
}

// Agents lists the configured agents with their default weights.
func (h *AnalysisEchoHandler) Agents(c echo.Context) error {
	names := h.base.Names()
	out := make([]agentStatus, 0, len(names))
	for _, name := range names {
		spec := h.base[name]
		out = append(out, agentStatus{Name: name, Weight: spec.Weight, Enabled: spec.Enabled})
	}
	return xhttp.SuccessResponse(c, out)
}

// History returns recent persisted analyses for a symbol.
func (h *AnalysisEchoHandler) History(c echo.Context) error {
	if h.history == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("analysis history is not enabled"))
	}

	symbol := c.Param("symbol")
	if symbol == "" {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("symbol is required"))
	}

	now := time.Now()
	from := util.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, -1, 0))
	to := util.ParseTimeDefault(c.QueryParam("to"), now)
	limit := util.ParseIntDefault(c.QueryParam("limit"), 50)
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	rows, err := h.history.Recent(c.Request().Context(), symbol, from, to, limit)
	if err != nil {
		h.logger.Error("history query error",
			xlogger.String("symbol", symbol),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// specsFor builds the effective agent configuration for one request:
// configured defaults, then the named profile, then per-agent overrides.
func (h *AnalysisEchoHandler) specsFor(profile string, overrides map[string]models.AgentOverride) (domsvc.SpecSet, error) {
	specs := h.base.Clone()

	if profile != "" {
		p, ok := h.profiles[profile]
		if !ok {
			return nil, models.ConfigErrorf("profile", "unknown profile %q", profile)
		}
		if err := specs.ApplyProfile(p); err != nil {
			return nil, err
		}
	}

	for name, ov := range overrides {
		if ov.Weight != nil {
			if err := specs.SetWeight(name, *ov.Weight); err != nil {
				return nil, err
			}
		}
		if ov.Enabled != nil {
			var err error
			if *ov.Enabled {
				err = specs.Enable(name)
			} else {
				err = specs.Disable(name)
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return specs, nil
}
