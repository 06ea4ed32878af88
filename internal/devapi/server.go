// Package devapi is an in-memory stand-in for the remote License API. It
// serves the admin endpoints the console consumes so the console and
// licensectl can run without the real backend, and backs the tests.
package devapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/storage/memstorage"
	"go.uber.org/zap"
)

type Options struct {
	AdminUsername string
	AdminPassword string
	TokenSecret   []byte
	TokenTTL      time.Duration
	Now           func() time.Time
}

type Server struct {
	licenses license.Repository
	users    *memstorage.UserRepository
	logs     *memstorage.ActivityLog
	tokens   *tokenSigner
	now      func() time.Time
	logger   *zap.Logger
}

func New(opts Options, logger *zap.Logger) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL == 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if len(opts.TokenSecret) == 0 {
		opts.TokenSecret = []byte("devapi-insecure-secret")
	}

	users, err := memstorage.NewUserRepository(opts.AdminUsername, opts.AdminPassword)
	if err != nil {
		return nil, err
	}

	return &Server{
		licenses: memstorage.NewLicenseRepository(),
		users:    users,
		logs:     memstorage.NewActivityLog(),
		tokens:   &tokenSigner{secret: opts.TokenSecret, ttl: opts.TokenTTL, now: opts.Now},
		now:      opts.Now,
		logger:   logger.Named("DevAPI"),
	}, nil
}

// Register mounts the endpoints on group, which plays the role of the API
// base URL (e.g. "/api").
func (s *Server) Register(group *gin.RouterGroup) {
	group.POST("/admin/login", s.login)
	group.POST("/licenses/validate", s.validate)

	admin := group.Group("/admin")
	admin.Use(s.authMiddleware())
	{
		admin.GET("/licenses", s.listLicenses)
		admin.POST("/licenses", s.createLicense)
		admin.POST("/licenses/revoke", s.revokeLicense)
		admin.PUT("/licenses/:key", s.updateLicense)
		admin.DELETE("/licenses/:key", s.deleteLicense)
		admin.GET("/stats", s.stats)
		admin.GET("/logs", s.listLogs)
	}
}

// Handler returns a standalone router serving under basePath.
func (s *Server) Handler(basePath string) http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	s.Register(router.Group(basePath))
	return router
}

func (s *Server) record(action, key string, success bool, notes string) {
	s.logs.Append(activity.Entry{
		Action:     action,
		LicenseKey: key,
		Success:    success,
		Timestamp:  s.now().UTC().Format(time.RFC3339),
		Notes:      notes,
	})
}

// AppendLog lets tests and seeders inject historical activity.
func (s *Server) AppendLog(e activity.Entry) {
	s.logs.Append(e)
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
