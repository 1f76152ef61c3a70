package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"finsight/internal/exporter"
	"finsight/internal/format"
	"finsight/internal/importer"
	"finsight/internal/logger"
	"finsight/internal/parser"
	"finsight/internal/store"
)

// Options 处理器配置
type Options struct {
	MaxUploadBytes int64
	SampleRows     int
	Formatter      *format.Formatter
	Classifier     *parser.ShapeClassifier
}

// Handler API 处理器
type Handler struct {
	store       *store.Store
	classifier  *parser.ShapeClassifier
	coordinator *importer.Coordinator
	exporter    *exporter.Exporter
	formatter   *format.Formatter
	maxUpload   int64
	sampleRows  int
}

// NewHandler 创建 API 处理器
func NewHandler(st *store.Store, opts Options) *Handler {
	classifier := opts.Classifier
	if classifier == nil {
		classifier = parser.NewShapeClassifier(nil)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.SampleRows <= 0 {
		opts.SampleRows = parser.DefaultSampleRows
	}
	if opts.Formatter == nil {
		opts.Formatter, _ = format.New("EUR", "en")
	}
	return &Handler{
		store:       st,
		classifier:  classifier,
		coordinator: importer.NewCoordinator(st, classifier, opts.SampleRows),
		exporter:    exporter.NewExporter(st, opts.Formatter),
		formatter:   opts.Formatter,
		maxUpload:   opts.MaxUploadBytes,
		sampleRows:  opts.SampleRows,
	}
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.Health)
	router.GET("/examples", h.Examples)

	// 布局识别与转换（不落库）
	router.POST("/classify", h.Classify)
	router.POST("/normalize", h.Normalize)
	router.POST("/dashboard", h.BuildDashboard)

	// 会话
	router.POST("/sessions", h.CreateSession)
	router.POST("/import", h.Import)
	router.GET("/sessions", h.ListSessions)
	router.GET("/sessions/:id", h.GetSession)
	router.DELETE("/sessions/:id", h.DeleteSession)
	router.GET("/sessions/:id/table", h.GetSessionTable)

	// 外部分析结果
	router.PUT("/sessions/:id/analyses/:kind", h.PutAnalysis)
	router.GET("/sessions/:id/analyses", h.ListAnalyses)
	router.GET("/sessions/:id/dashboard", h.GetDashboard)
	router.GET("/sessions/:id/export", h.ExportSession)

	router.GET("/import-logs", h.ListImportLogs)
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	success(c, gin.H{"status": "ok"})
}

// readUpload 读取 multipart 中的 file 字段（受大小限制）
func (h *Handler) readUpload(c *gin.Context) (string, []byte, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+(1<<20))

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			errorResponse(c, CodeFileTooLarge, fmt.Sprintf("file exceeds %d MB", h.maxUpload>>20))
			return "", nil, false
		}
		errorResponse(c, CodeBadRequest, "missing upload field \"file\"")
		return "", nil, false
	}
	if fh.Size > h.maxUpload {
		errorResponse(c, CodeFileTooLarge, fmt.Sprintf("file exceeds %d MB", h.maxUpload>>20))
		return "", nil, false
	}

	data, err := readFileHeader(fh)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("read upload failed", "filename", fh.Filename, "error", err)
		errorResponse(c, CodeInternal, "failed to read upload")
		return "", nil, false
	}
	return fh.Filename, data, true
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// readErrorResponse 将读取错误映射为业务错误码
func readErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, importer.ErrUnsupportedFormat):
		errorResponse(c, CodeUnsupportedFile, err.Error())
	case errors.Is(err, importer.ErrEmptyFile), errors.Is(err, importer.ErrNoHeader):
		errorResponse(c, CodeUnreadableFile, err.Error())
	default:
		var rerr *importer.ReadError
		if errors.As(err, &rerr) {
			errorResponse(c, CodeUnreadableFile, err.Error())
			return
		}
		logger.FromContext(c.Request.Context()).Error("import failed", "error", err)
		errorResponse(c, CodeStoreFailure, "failed to save session")
	}
}

// storeErrorResponse 存储层错误
func storeErrorResponse(c *gin.Context, err error) {
	if errors.Is(err, store.ErrNotFound) {
		errorResponse(c, CodeNotFound, err.Error())
		return
	}
	logger.FromContext(c.Request.Context()).Error("store error", "path", c.FullPath(), "error", err)
	errorResponse(c, CodeStoreFailure, "storage error")
}
