package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/ledger-service/internal/http/middleware"
	"github.com/nurpe/ledger-service/internal/service"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	contracts *service.ContractService
	payments  *service.PaymentService
	deposits  *service.DepositService
	reports   *service.ReportService
	health    Pinger
	log       zerolog.Logger
}

type Services struct {
	Contracts *service.ContractService
	Payments  *service.PaymentService
	Deposits  *service.DepositService
	Reports   *service.ReportService
	Health    Pinger
}

func NewHandler(services Services, log zerolog.Logger) *Handler {
	return &Handler{
		contracts: services.Contracts,
		payments:  services.Payments,
		deposits:  services.Deposits,
		reports:   services.Reports,
		health:    services.Health,
		log:       log,
	}
}

// Register mounts the ledger routes. Profile scoped routes sit behind
// authMiddleware; the admin reports take no caller identity.
func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc, extra ...gin.HandlerFunc) {
	router.GET("/healthz", h.healthz)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.Use(extra...)
	protected.GET("/contracts/:id", h.getContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/jobs/unpaid", h.listUnpaidJobs)
	protected.POST("/jobs/:id/pay", h.payJob)
	protected.POST("/balances/deposit/:userId", h.deposit)

	admin := router.Group("/admin")
	admin.Use(extra...)
	admin.GET("/best-profession", h.bestProfession)
	admin.GET("/best-clients", h.bestClients)
	admin.GET("/report", h.exportReport)
}

func (h *Handler) getContract(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), profile.ID, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), profile.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) listUnpaidJobs(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}

	jobs, err := h.contracts.ListUnpaidJobs(c.Request.Context(), profile.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) payJob(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	jobID, err := pathID(c, "id")
	if err != nil {
		h.handleError(c, err)
		return
	}

	if err := h.payments.SettleJob(c.Request.Context(), profile.ID, jobID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

type depositRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

func (h *Handler) deposit(c *gin.Context) {
	profile, ok := middleware.MustProfile(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing profile"})
		return
	}
	// A malformed target can never be the caller; the service rejects it
	// as forbidden before looking at the amount.
	targetID, _ := pathID(c, "userId")

	// Unreadable amounts become zero so ownership is checked before the body.
	amount := decimal.Zero
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.Amount != nil {
		amount = *req.Amount
	}

	if err := h.deposits.Deposit(c.Request.Context(), profile.ID, targetID, amount); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) bestProfession(c *gin.Context) {
	best, err := h.reports.BestProfession(c.Request.Context(), c.Query("start"), c.Query("end"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, best)
}

func (h *Handler) bestClients(c *gin.Context) {
	clients, err := h.reports.BestClients(c.Request.Context(), c.Query("start"), c.Query("end"), queryLimit(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (h *Handler) exportReport(c *gin.Context) {
	result, err := h.reports.ExportReport(c.Request.Context(), service.ExportReportInput{
		Format: c.DefaultQuery("format", "xlsx"),
		Start:  c.Query("start"),
		End:    c.Query("end"),
		Limit:  queryLimit(c),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func (h *Handler) healthz(c *gin.Context) {
	if h.health != nil {
		if err := h.health.Ping(c.Request.Context()); err != nil {
			h.log.Error().Err(err).Msg("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var svcErr *service.Error
	if !errors.As(err, &svcErr) {
		svcErr = &service.Error{Kind: service.KindInternal, Err: err}
	}

	switch svcErr.Kind {
	case service.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": svcErr.Error()})
	case service.KindForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": svcErr.Error()})
	case service.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": svcErr.Error(), "code": svcErr.Code})
	case service.KindConflict:
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": svcErr.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.ErrNotFound.With("no resource with %s %q", name, c.Param(name))
	}
	return id, nil
}

// queryLimit returns 0 for a missing or malformed limit so the service
// applies its default.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}
