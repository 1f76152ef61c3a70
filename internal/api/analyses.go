package api

import (
	"io"

	"github.com/gin-gonic/gin"

	"finsight/internal/dashboard"
	"finsight/internal/logger"
	"finsight/internal/model"
)

// PutAnalysis 保存外部分析服务的结果（payload 或 {"error": "..."}）
// PUT /api/sessions/:id/analyses/:kind
func (h *Handler) PutAnalysis(c *gin.Context) {
	kind, ok := model.ParseAnalysisKind(c.Param("kind"))
	if !ok {
		errorResponse(c, CodeBadRequest, "unknown analysis kind: "+c.Param("kind"))
		return
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxUpload))
	if err != nil || len(raw) == 0 {
		errorResponse(c, CodeBadRequest, "empty request body")
		return
	}

	// 先校验结构，避免把存储错误和格式错误混在一起
	var check model.AnalysisBundle
	if err := check.SetRaw(kind, raw); err != nil {
		errorResponse(c, CodeBadRequest, err.Error())
		return
	}
	if err := h.store.PutAnalysis(c.Param("id"), kind, raw); err != nil {
		storeErrorResponse(c, err)
		return
	}

	logger.FromContext(c.Request.Context()).Info("analysis stored",
		"session_id", c.Param("id"),
		"kind", kind,
		"state", check.State(kind).String(),
	)
	success(c, gin.H{"kind": kind, "state": check.State(kind).String()})
}

// ListAnalyses 会话的分析快照
// GET /api/sessions/:id/analyses
func (h *Handler) ListAnalyses(c *gin.Context) {
	bundle, err := h.store.GetBundle(c.Param("id"))
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, bundle)
}

// GetDashboard 会话看板
// GET /api/sessions/:id/dashboard
func (h *Handler) GetDashboard(c *gin.Context) {
	bundle, err := h.store.GetBundle(c.Param("id"))
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, dashboard.Build(bundle, dashboard.Options{Formatter: h.formatter}))
}

// BuildDashboard 直接由请求体中的分析快照生成看板
// POST /api/dashboard
func (h *Handler) BuildDashboard(c *gin.Context) {
	var bundle model.AnalysisBundle
	if err := c.ShouldBindJSON(&bundle); err != nil {
		errorResponse(c, CodeBadRequest, "invalid analysis bundle: "+err.Error())
		return
	}
	success(c, dashboard.Build(bundle, dashboard.Options{Formatter: h.formatter}))
}

// Examples 演示数据
// GET /api/examples
func (h *Handler) Examples(c *gin.Context) {
	success(c, dashboard.ExampleBundle())
}
