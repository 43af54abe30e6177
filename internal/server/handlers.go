package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"visionhelp/internal/helpctx"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleGetContext(c *gin.Context) {
	snapshot := s.tracker.Context()
	c.JSON(http.StatusOK, gin.H{
		"context":    snapshot,
		"contextKey": snapshot.Key(),
	})
}

type roleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (s *Server) handleSetRole(c *gin.Context) {
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role is required"})
		return
	}
	// Invalid roles are corrected to the default inside the tracker, not
	// rejected here.
	s.tracker.SetRole(req.Role)
	c.JSON(http.StatusOK, gin.H{"role": s.tracker.Context().Role})
}

type pageRequest struct {
	Page string `json:"page" binding:"required"`
}

func (s *Server) handleSetPage(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page is required"})
		return
	}
	s.tracker.SetPage(req.Page)
	c.JSON(http.StatusOK, gin.H{"page": req.Page})
}

type sectionRequest struct {
	Section string `json:"section"`
}

func (s *Server) handleSetSection(c *gin.Context) {
	var req sectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	s.tracker.SetSection(req.Section)
	c.JSON(http.StatusOK, gin.H{"section": req.Section})
}

type interactionRequest struct {
	ElementID   string `json:"elementId" binding:"required"`
	ElementKind string `json:"elementKind"`
	Action      string `json:"action"`
}

func (s *Server) handleInteraction(c *gin.Context) {
	var req interactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "elementId is required"})
		return
	}
	s.tracker.TrackInteraction(req.ElementID, req.ElementKind, req.Action)
	c.JSON(http.StatusOK, gin.H{"tracked": req.ElementID})
}

// Resolution endpoints never report failure: the resolver degrades to a
// fallback document, so renderers always get a 200 with something to show.

func (s *Server) handleResolveCurrent(c *gin.Context) {
	key := s.tracker.Key()
	doc := s.resolver.Resolve(c.Request.Context(), key)
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleResolve(c *gin.Context) {
	doc := s.resolver.Resolve(c.Request.Context(), c.Param("key"))
	c.JSON(http.StatusOK, doc)
}

func (s *Server) handleTooltip(c *gin.Context) {
	role := c.Query("role")
	if role == "" {
		role = string(s.tracker.Context().Role)
	}
	tip := s.resolver.ResolveTooltip(c.Request.Context(), c.Param("page"), c.Param("element"), role)
	c.JSON(http.StatusOK, tip)
}

type preloadRequest struct {
	Keys []string `json:"keys" binding:"required"`
}

func (s *Server) handlePreload(c *gin.Context) {
	var req preloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keys is required"})
		return
	}
	s.resolver.Preload(c.Request.Context(), req.Keys)
	c.JSON(http.StatusOK, gin.H{"preloaded": len(req.Keys)})
}

type sourceRequest struct {
	Source string `json:"source" binding:"required"`
}

func (s *Server) handleSetSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "source is required"})
		return
	}
	s.resolver.SetSource(req.Source)
	c.JSON(http.StatusOK, gin.H{"source": s.resolver.SourceMode()})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.resolver.CacheStats())
}

func (s *Server) handleClearCache(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": s.resolver.ClearCache()})
}

func (s *Server) handleClearExpired(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cleared": s.resolver.ClearExpired()})
}

// handleRoles lets the role-selector widget populate itself.
func (s *Server) handleRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"roles":   helpctx.Roles(),
		"current": s.tracker.Context().Role,
	})
}
