package devapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/makkenzo/license-admin-console/internal/domain/activity"
	"github.com/makkenzo/license-admin-console/internal/domain/license"
	"github.com/makkenzo/license-admin-console/internal/util"
	"go.uber.org/zap"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type revokeRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

type validateRequest struct {
	LicenseKey string `json:"license_key" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "username and password are required")
		return
	}

	if err := s.users.Authenticate(c.Request.Context(), req.Username, req.Password); err != nil {
		s.logger.Info("Invalid login attempt", zap.String("username", req.Username))
		fail(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.tokens.issue(req.Username)
	if err != nil {
		s.logger.Error("Failed to sign token", zap.Error(err))
		fail(c, http.StatusInternalServerError, "login failed")
		return
	}

	s.logger.Info("Admin logged in", zap.String("username", req.Username))
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token})
}

func (s *Server) listLicenses(c *gin.Context) {
	list, err := s.licenses.List(c.Request.Context())
	if err != nil {
		s.logger.Error("Failed to list licenses", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to retrieve licenses")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "licenses": list})
}

func (s *Server) createLicense(c *gin.Context) {
	var req license.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.record(activity.ActionError, "", false, "invalid create request")
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.DurationDays <= 0 {
		s.record(activity.ActionError, "", false, "non-positive duration")
		fail(c, http.StatusBadRequest, "duration_days must be positive")
		return
	}

	key, err := util.GenerateLicenseKey()
	if err != nil {
		s.logger.Error("Failed to generate license key", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to create license")
		return
	}

	now := s.now().UTC()
	lic := &license.License{
		ID:         uuid.NewString(),
		LicenseKey: key,
		UserName:   req.UserName,
		UserEmail:  req.UserEmail,
		IsActive:   true,
		ExpiresAt:  license.NewTimestamp(now.AddDate(0, 0, req.DurationDays)),
		CreatedAt:  license.NewTimestamp(now),
		Notes:      req.Notes,
	}
	if err := s.licenses.Create(c.Request.Context(), lic); err != nil {
		s.logger.Error("Failed to store license", zap.Error(err))
		if errors.Is(err, license.ErrDuplicateKey) {
			s.record(activity.ActionError, key, false, "duplicate license key")
			fail(c, http.StatusConflict, err.Error())
			return
		}
		fail(c, http.StatusInternalServerError, "failed to create license")
		return
	}

	s.record(activity.ActionCreate, key, true, "created for "+req.UserEmail)
	s.logger.Info("License created", zap.String("key", key))
	c.JSON(http.StatusCreated, gin.H{"success": true, "license": lic})
}

func (s *Server) updateLicense(c *gin.Context) {
	key := c.Param("key")

	var req license.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	lic, ok := s.findOrFail(c, key)
	if !ok {
		return
	}
	lic.UserEmail = req.UserEmail
	lic.UserName = req.UserName
	lic.Notes = req.Notes
	lic.IsActive = req.IsActive

	if err := s.licenses.Update(c.Request.Context(), lic); err != nil {
		s.logger.Error("Failed to update license", zap.String("key", key), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to update license")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "license": lic})
}

func (s *Server) revokeLicense(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "license_key is required")
		return
	}

	lic, ok := s.findOrFail(c, req.LicenseKey)
	if !ok {
		return
	}
	lic.IsActive = false
	if err := s.licenses.Update(c.Request.Context(), lic); err != nil {
		s.logger.Error("Failed to revoke license", zap.String("key", req.LicenseKey), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to revoke license")
		return
	}

	s.record(activity.ActionRevoke, req.LicenseKey, true, "")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "license revoked"})
}

func (s *Server) deleteLicense(c *gin.Context) {
	key := c.Param("key")
	if err := s.licenses.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, license.ErrNotFound) {
			fail(c, http.StatusNotFound, "license not found")
			return
		}
		s.logger.Error("Failed to delete license", zap.String("key", key), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to delete license")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "license deleted"})
}

func (s *Server) stats(c *gin.Context) {
	list, err := s.licenses.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to compute stats")
		return
	}

	now := s.now()
	var st license.Stats
	users := make(map[string]struct{})
	for _, lic := range list {
		st.TotalLicenses++
		switch license.DeriveStatus(*lic, now) {
		case license.StatusActive:
			st.ActiveLicenses++
			users[lic.UserEmail] = struct{}{}
		case license.StatusExpired:
			st.ExpiredLicenses++
		}
	}
	st.ActiveUsers = int64(len(users))

	c.JSON(http.StatusOK, gin.H{"success": true, "stats": st})
}

func (s *Server) listLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "logs": s.logs.List()})
}

// validate is the public endpoint end-user applications call; it feeds the
// "validate" entries of the activity log.
func (s *Server) validate(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "license_key is required")
		return
	}

	lic, err := s.licenses.FindByKey(c.Request.Context(), req.LicenseKey)
	if err != nil {
		s.record(activity.ActionValidate, req.LicenseKey, false, "unknown key")
		c.JSON(http.StatusOK, gin.H{"success": true, "valid": false, "status": "unknown"})
		return
	}

	status := license.DeriveStatus(*lic, s.now())
	valid := status == license.StatusActive
	s.record(activity.ActionValidate, req.LicenseKey, valid, string(status))
	c.JSON(http.StatusOK, gin.H{"success": true, "valid": valid, "status": status})
}

func (s *Server) findOrFail(c *gin.Context, key string) (*license.License, bool) {
	lic, err := s.licenses.FindByKey(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, license.ErrNotFound) {
			fail(c, http.StatusNotFound, "license not found")
			return nil, false
		}
		s.logger.Error("Failed to load license", zap.String("key", key), zap.Error(err))
		fail(c, http.StatusInternalServerError, "internal error")
		return nil, false
	}
	return lic, true
}
