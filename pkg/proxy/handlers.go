package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	timestampLayout = "2006-01-02T15:04:05.000Z"
	logPayloadChars = 800
	versionTimeout  = 2 * time.Second
)

// chatRequest is the accepted request body. Messages are forwarded verbatim.
type chatRequest struct {
	Model       string          `json:"model"`
	Messages    json.RawMessage `json:"messages"`
	Temperature *float64        `json:"temperature"`
}

// upstreamRequest is the body sent to the model server.
type upstreamRequest struct {
	Model    string          `json:"model"`
	Messages json.RawMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

func timestamp() string {
	return time.Now().UTC().Format(timestampLayout)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": timestamp(),
		"target":    s.cfg.ChatURL(),
	})
}

func (s *Server) handleStatus(c *gin.Context) {
	body := gin.H{
		"service":    "LLM Proxy Server",
		"status":     "running",
		"target_url": s.cfg.ChatURL(),
		"port":       s.cfg.Port,
		"timestamp":  timestamp(),
		"uptime":     time.Since(s.started).Seconds(),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), versionTimeout)
	defer cancel()
	if version, err := s.upstream.Version(ctx); err == nil {
		body["upstream_version"] = version
	} else {
		body["upstream_version"] = nil
	}

	c.JSON(http.StatusOK, body)
}

func (s *Server) handleNotFound(c *gin.Context) {
	s.logger.Warn("route not found",
		zap.String("method", c.Request.Method),
		zap.String("url", c.Request.URL.String()),
	)
	c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
}

func (s *Server) handleChat(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	var req chatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !isJSONArray(req.Messages) {
		s.logger.Warn("validation failed", zap.String("error", "messages array is required"))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: 'messages' array is required"})
		return
	}

	body := s.toUpstream(req)
	if payload, err := json.Marshal(body); err == nil {
		s.logger.Debug("llm request",
			zap.String("target", s.cfg.ChatURL()),
			zap.String("payload", truncate(string(payload), logPayloadChars)),
		)
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(c.Request.Context()).
		SetBody(body).
		Post(s.cfg.ChatURL())
	duration := time.Since(start)

	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			s.metrics.RecordUpstream("unavailable", duration)
			s.logger.Error("llm service unavailable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "LLM service unavailable",
				"details": "Could not connect to local LLM server",
				"target":  s.cfg.ChatURL(),
			})
			return
		}
		s.metrics.RecordUpstream("error", duration)
		s.logger.Error("proxy failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Proxy failed", "details": err.Error()})
		return
	}

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		s.metrics.RecordUpstream("upstream_error", duration)
		s.logger.Error("llm api error",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), logPayloadChars)),
		)
		c.JSON(resp.StatusCode(), gin.H{
			"error":   "LLM API error",
			"status":  resp.StatusCode(),
			"details": resp.String(),
		})
		return
	}

	if !json.Valid(resp.Body()) {
		s.metrics.RecordUpstream("error", duration)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Proxy failed",
			"details": "invalid JSON from LLM server",
		})
		return
	}

	s.metrics.RecordUpstream("ok", duration)
	s.logger.Info("llm response received",
		zap.Duration("duration", duration),
		zap.Int("size", len(resp.Body())),
	)
	c.Data(http.StatusOK, "application/json; charset=utf-8", resp.Body())
}

func (s *Server) toUpstream(req chatRequest) upstreamRequest {
	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}
	body := upstreamRequest{
		Model:    model,
		Messages: req.Messages,
		Stream:   false,
	}
	if req.Temperature != nil {
		body.Options = map[string]any{"temperature": *req.Temperature}
	}
	return body
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "... (truncated)"
}
