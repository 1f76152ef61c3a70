package api

import (
	"github.com/gin-gonic/gin"

	"finsight/internal/model"
	"finsight/internal/normalizer"
)

// NormalizeRequest 转换请求：给出 table 或 sessionId 二选一
type NormalizeRequest struct {
	SessionID string            `json:"sessionId"`
	Table     *model.RawTable   `json:"table"`
	Rules     *normalizer.Rules `json:"rules"`
}

// Normalize 执行显式请求的表格转换
// POST /api/normalize
func (h *Handler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, CodeBadRequest, "invalid request body: "+err.Error())
		return
	}

	var table model.RawTable
	switch {
	case req.Table != nil:
		table = *req.Table
	case req.SessionID != "":
		t, err := h.store.GetSessionTable(req.SessionID)
		if err != nil {
			storeErrorResponse(c, err)
			return
		}
		table = t
	default:
		errorResponse(c, CodeBadRequest, "either table or sessionId is required")
		return
	}

	rules := normalizer.DefaultRules()
	if req.Rules != nil {
		rules = *req.Rules
	}
	success(c, normalizer.Normalize(table, rules, h.classifier))
}
