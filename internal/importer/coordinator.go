package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"finsight/internal/logger"
	"finsight/internal/model"
	"finsight/internal/parser"
	"finsight/internal/store"
)

// Coordinator 导入协调器：读取文件 → 识别布局 → 保存会话
type Coordinator struct {
	store      *store.Store
	classifier *parser.ShapeClassifier
	sampleRows int
}

// NewCoordinator 创建导入协调器；classifier 为 nil 时使用默认词库
func NewCoordinator(store *store.Store, classifier *parser.ShapeClassifier, sampleRows int) *Coordinator {
	if classifier == nil {
		classifier = parser.NewShapeClassifier(nil)
	}
	if sampleRows <= 0 {
		sampleRows = parser.DefaultSampleRows
	}
	return &Coordinator{
		store:      store,
		classifier: classifier,
		sampleRows: sampleRows,
	}
}

// ImportOptions 导入选项
type ImportOptions struct {
	Filename string
	Data     []byte
}

// 进度事件类型
const (
	EventStart    = "start"
	EventRead     = "read"
	EventClassify = "classify"
	EventDone     = "done"
	EventError    = "error"
)

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ImportResult 导入结果
type ImportResult struct {
	Session     *model.Session `json:"session"`
	ImportLogID int64          `json:"importLogId"`
}

// Import 异步执行导入，返回进度通道（完成后关闭）
func (c *Coordinator) Import(ctx context.Context, opts ImportOptions) <-chan ProgressEvent {
	progressChan := make(chan ProgressEvent, 16)

	go func() {
		defer close(progressChan)
		emit := func(ev ProgressEvent) {
			ev.Timestamp = time.Now()
			select {
			case progressChan <- ev:
			case <-ctx.Done():
			}
		}
		if _, err := c.doImport(ctx, opts, emit); err != nil {
			emit(ProgressEvent{Type: EventError, Message: err.Error()})
		}
	}()

	return progressChan
}

// Run 同步执行导入
func (c *Coordinator) Run(ctx context.Context, opts ImportOptions) (*ImportResult, error) {
	return c.doImport(ctx, opts, func(ProgressEvent) {})
}

func (c *Coordinator) doImport(ctx context.Context, opts ImportOptions, emit func(ProgressEvent)) (*ImportResult, error) {
	log := logger.FromContext(ctx)

	emit(ProgressEvent{
		Type:    EventStart,
		Message: "import started",
		Data:    map[string]any{"filename": opts.Filename, "size": len(opts.Data)},
	})

	sum := sha256.Sum256(opts.Data)
	logID, err := c.store.CreateImportLog(opts.Filename, int64(len(opts.Data)), hex.EncodeToString(sum[:]))
	if err != nil {
		return nil, err
	}

	fail := func(err error) (*ImportResult, error) {
		if uerr := c.store.UpdateImportLog(logID, "", 0, model.ImportFailed, err.Error()); uerr != nil {
			log.Error("update import log failed", "import_log_id", logID, "error", uerr)
		}
		log.Warn("import failed", "filename", opts.Filename, "error", err)
		return nil, err
	}

	table, format, err := Read(opts.Filename, opts.Data)
	if err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	emit(ProgressEvent{
		Type:    EventRead,
		Message: fmt.Sprintf("read %d rows, %d columns", table.Len(), len(table.Headers())),
		Data:    map[string]any{"format": format, "headers": table.Headers(), "rows": table.Len()},
	})

	assessment := c.classifier.ClassifyTable(table, c.sampleRows)
	emit(ProgressEvent{
		Type:    EventClassify,
		Message: fmt.Sprintf("detected %s layout (confidence %d%%)", assessment.DetectedShape, assessment.Confidence),
		Data:    assessment,
	})

	sess := &model.Session{
		ID:         uuid.NewString(),
		Filename:   opts.Filename,
		Format:     string(format),
		Headers:    table.Headers(),
		RowCount:   table.Len(),
		Assessment: assessment,
	}
	if err := c.store.CreateSession(sess, table); err != nil {
		return fail(err)
	}
	if err := c.store.UpdateImportLog(logID, sess.ID, sess.RowCount, model.ImportSuccess, ""); err != nil {
		log.Error("update import log failed", "import_log_id", logID, "error", err)
	}

	log.Info("import finished",
		"session_id", sess.ID,
		"filename", opts.Filename,
		"format", format,
		"rows", sess.RowCount,
		"confidence", assessment.Confidence,
		"shape", assessment.DetectedShape,
	)

	result := &ImportResult{Session: sess, ImportLogID: logID}
	emit(ProgressEvent{Type: EventDone, Message: "import finished", Data: result})
	return result, nil
}
