package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"finsight/internal/importer"
)

// CreateSession 上传文件：读取、识别并保存为会话
// POST /api/sessions
func (h *Handler) CreateSession(c *gin.Context) {
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.coordinator.Run(c.Request.Context(), importer.ImportOptions{
		Filename: filename,
		Data:     data,
	})
	if err != nil {
		readErrorResponse(c, err)
		return
	}
	success(c, result.Session)
}

// Import 上传文件并以 SSE 推送导入进度
// POST /api/import
func (h *Handler) Import(c *gin.Context) {
	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		errorResponse(c, CodeInternal, "streaming not supported")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	progressChan := h.coordinator.Import(c.Request.Context(), importer.ImportOptions{
		Filename: filename,
		Data:     data,
	})
	for event := range progressChan {
		eventData, err := json.Marshal(event)
		if err != nil {
			continue
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", eventData)
		flusher.Flush()
	}
}

// ListSessions 会话列表
// GET /api/sessions
func (h *Handler) ListSessions(c *gin.Context) {
	sessions, err := h.store.ListSessions()
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, sessions)
}

// GetSession 会话详情
// GET /api/sessions/:id
func (h *Handler) GetSession(c *gin.Context) {
	sess, err := h.store.GetSession(c.Param("id"))
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, sess)
}

// GetSessionTable 会话原始表格
// GET /api/sessions/:id/table?limit=100
func (h *Handler) GetSessionTable(c *gin.Context) {
	table, err := h.store.GetSessionTable(c.Param("id"))
	if err != nil {
		storeErrorResponse(c, err)
		return
	}

	limit := table.Len()
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorResponse(c, CodeBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	success(c, gin.H{
		"headers":  table.Headers(),
		"rows":     table.Sample(limit),
		"rowCount": table.Len(),
	})
}

// DeleteSession 删除会话
// DELETE /api/sessions/:id
func (h *Handler) DeleteSession(c *gin.Context) {
	if err := h.store.DeleteSession(c.Param("id")); err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, gin.H{"id": c.Param("id")})
}

// ListImportLogs 最近的导入记录
// GET /api/import-logs?limit=50
func (h *Handler) ListImportLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.store.ListImportLogs(limit)
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	success(c, logs)
}
