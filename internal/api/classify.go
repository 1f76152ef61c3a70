package api

import (
	"strings"

	"github.com/gin-gonic/gin"

	"finsight/internal/importer"
	"finsight/internal/model"
)

// ClassifyRequest JSON 方式提交表头与样本行
// records 为对象数组形式的行，给出时忽略 sampleRows；headers 为空时取 records 的全部键
type ClassifyRequest struct {
	Headers    []string                `json:"headers"`
	SampleRows []model.Row             `json:"sampleRows"`
	Records    []map[string]model.Cell `json:"records"`
}

// ClassifyResponse 识别结果
type ClassifyResponse struct {
	Filename   string                `json:"filename,omitempty"`
	Format     importer.Format       `json:"format,omitempty"`
	Headers    []string              `json:"headers"`
	RowCount   int                   `json:"rowCount"`
	Sample     []model.Row           `json:"sample"`
	Assessment model.ShapeAssessment `json:"assessment"`
}

// Classify 上传前的布局识别（不落库）
// POST /api/classify  multipart(file) 或 JSON {headers, sampleRows}
func (h *Handler) Classify(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req ClassifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, CodeBadRequest, "invalid request body: "+err.Error())
			return
		}
		if len(req.Records) > 0 {
			table := model.RecordsToTable(req.Headers, req.Records)
			success(c, ClassifyResponse{
				Headers:    table.Headers(),
				RowCount:   table.Len(),
				Sample:     table.Sample(5),
				Assessment: h.classifier.ClassifyTable(table, h.sampleRows),
			})
			return
		}
		success(c, ClassifyResponse{
			Headers:    req.Headers,
			RowCount:   len(req.SampleRows),
			Sample:     req.SampleRows,
			Assessment: h.classifier.Classify(req.Headers, req.SampleRows),
		})
		return
	}

	filename, data, ok := h.readUpload(c)
	if !ok {
		return
	}
	table, format, err := importer.Read(filename, data)
	if err != nil {
		readErrorResponse(c, err)
		return
	}

	success(c, ClassifyResponse{
		Filename:   filename,
		Format:     format,
		Headers:    table.Headers(),
		RowCount:   table.Len(),
		Sample:     table.Sample(5),
		Assessment: h.classifier.ClassifyTable(table, h.sampleRows),
	})
}
