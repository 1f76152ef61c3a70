package api

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"finsight/internal/exporter"
	"finsight/internal/logger"
)

// ExportSession 下载会话工作簿（看板 + 图表数据 + 原始表格）
// GET /api/sessions/:id/export
func (h *Handler) ExportSession(c *gin.Context) {
	id := c.Param("id")
	sess, err := h.store.GetSession(id)
	if err != nil {
		storeErrorResponse(c, err)
		return
	}

	log := logger.FromContext(c.Request.Context())
	file, err := h.exporter.Export(exporter.ExportOptions{
		SessionID: id,
		Progress: func(p exporter.ProgressEvent) {
			log.Debug("export progress", "session_id", id, "percent", p.Percent, "stage", p.Stage)
		},
	})
	if err != nil {
		storeErrorResponse(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Disposition", exportContentDisposition(sess.Filename))
	c.Header("Content-Type", exporter.ContentType)
	if err := file.Write(c.Writer); err != nil {
		log.Error("write export failed", "session_id", id, "error", err)
	}
}

func exportContentDisposition(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if base == "" || base == "." {
		base = "session"
	}
	return mime.FormatMediaType("attachment", map[string]string{
		"filename": fmt.Sprintf("%s_dashboard.xlsx", base),
	})
}
