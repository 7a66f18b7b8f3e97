// Package web exposes the HTTP surface: health and metrics probes, a
// billing-run API and the messaging webhook with its text commands.
package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "tutorbill/internal/errors"
	appLog "tutorbill/internal/log"
	"tutorbill/internal/model"
	"tutorbill/internal/period"
	"tutorbill/internal/runner"
	"tutorbill/internal/store"
)

// Server handles the HTTP API and webhook.
type Server struct {
	store  store.Store
	runner *runner.Runner
}

// NewServer constructs a server.
func NewServer(st store.Store, r *runner.Runner) *Server {
	return &Server{store: st, runner: r}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/webhook", s.webhook)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/billing/run", s.runBilling)
	}

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type runRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
}

// runBilling triggers a billing run for one recipient.
// POST /api/v1/billing/run
func (s *Server) runBilling(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	year, month := req.Year, req.Month
	if year == 0 && month == 0 {
		year, month = period.Previous(time.Now())
	}

	if err := s.runner.Run(c.Request.Context(), req.Recipient, year, month); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "delivered", "year": year, "month": month})
}

type webhookRequest struct {
	Recipient string `json:"recipient" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

// webhook handles inbound messaging commands:
//
//	register <feedURL> <rosterURL> <teacherEmail>
//	unregister
//	bill [YYYY-MM]
func (s *Server) webhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		c.JSON(http.StatusOK, gin.H{"reply": helpText})
		return
	}

	switch strings.ToLower(fields[0]) {
	case "register":
		s.handleRegister(c, req.Recipient, fields[1:])
	case "unregister":
		s.handleUnregister(c, req.Recipient)
	case "bill":
		s.handleBill(c, req.Recipient, fields[1:])
	default:
		c.JSON(http.StatusOK, gin.H{"reply": helpText})
	}
}

const helpText = "指令：register <行事曆網址> <名冊網址> <老師email>、unregister、bill [YYYY-MM]"

func (s *Server) handleRegister(c *gin.Context, recipient string, args []string) {
	if len(args) != 3 {
		c.JSON(http.StatusOK, gin.H{"reply": helpText})
		return
	}

	reg := model.Registration{
		Recipient:    recipient,
		FeedURL:      args[0],
		RosterURL:    args[1],
		TeacherEmail: strings.ToLower(args[2]),
	}
	if err := s.store.Upsert(c.Request.Context(), reg); err != nil {
		respondError(c, apperrors.NewInternalError("saving registration", err))
		return
	}

	appLog.Info("registration saved", "recipient", recipient)
	c.JSON(http.StatusOK, gin.H{"reply": "註冊完成"})
}

func (s *Server) handleUnregister(c *gin.Context, recipient string) {
	if err := s.store.Delete(c.Request.Context(), recipient); err != nil {
		respondError(c, apperrors.NewInternalError("deleting registration", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": "已取消註冊"})
}

func (s *Server) handleBill(c *gin.Context, recipient string, args []string) {
	year, month := period.Previous(time.Now())
	if len(args) >= 1 {
		t, err := time.Parse("2006-01", args[0])
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"reply": "月份格式錯誤，請使用 YYYY-MM"})
			return
		}
		year, month = t.Year(), int(t.Month())
	}

	if err := s.runner.Run(c.Request.Context(), recipient, year, month); err != nil {
		// The runner already pushed a failure notice for engine errors;
		// the webhook caller still gets the error status.
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": "帳單已送出", "year": year, "month": month})
}

// respondError maps application error codes to HTTP statuses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperrors.CodeOf(err) {
	case apperrors.CodeNotRegistered:
		status = http.StatusNotFound
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodeNetwork, apperrors.CodeParse:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.CodeOf(err)})
}
