package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"study_plan_backend/internal/util"
	"study_plan_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DiagnosticsSink 保存一条诊断记录（提示词、原始响应或错误信息）
type DiagnosticsSink interface {
	Save(ctx context.Context, name, content string) error
}

// DiscardDiagnostics 不保存任何内容
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Save(context.Context, string, string) error { return nil }

// AsyncDiagnostics 在后台协程中写入，调用方不等待结果，失败只记录日志
type AsyncDiagnostics struct {
	sink    DiagnosticsSink
	timeout time.Duration
	wg      sync.WaitGroup
}

const defaultDiagnosticsTimeout = 10 * time.Second

func NewAsyncDiagnostics(sink DiagnosticsSink) *AsyncDiagnostics {
	if sink == nil {
		sink = DiscardDiagnostics{}
	}
	return &AsyncDiagnostics{sink: sink, timeout: defaultDiagnosticsTimeout}
}

// Record 立即返回。写入使用独立的超时上下文，请求结束不会中断写入。
func (a *AsyncDiagnostics) Record(name, content string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Log.Error("诊断记录写入异常", zap.String("name", name), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		if err := a.sink.Save(ctx, name, content); err != nil {
			logger.Log.Warn("诊断记录写入失败", zap.String("name", name), zap.Error(err))
		}
	}()
}

// Wait 等待所有已提交的写入结束
func (a *AsyncDiagnostics) Wait() {
	a.wg.Wait()
}

// StorageDiagnosticsWriter 把诊断记录写入对象存储（本地、MinIO 或 OSS）
type StorageDiagnosticsWriter struct {
	storage *StorageService
	prefix  string
	now     func() time.Time
}

func NewStorageDiagnosticsWriter(storage *StorageService, prefix string) *StorageDiagnosticsWriter {
	return &StorageDiagnosticsWriter{storage: storage, prefix: prefix, now: time.Now}
}

// ObjectName 记录按日期分目录保存
func (w *StorageDiagnosticsWriter) ObjectName(name string) string {
	return path.Join(w.prefix, w.now().Format(util.DateFormat), name+".txt")
}

// URL 记录在存储中的访问地址
func (w *StorageDiagnosticsWriter) URL(name string) string {
	return w.storage.GetURL(w.ObjectName(name))
}

func (w *StorageDiagnosticsWriter) Save(ctx context.Context, name, content string) error {
	_, err := w.storage.Upload(ctx, w.ObjectName(name), strings.NewReader(content), int64(len(content)), util.MimeText)
	return err
}

// DiagnosticsEntry Redis 中保存的最近诊断索引
type DiagnosticsEntry struct {
	Name    string    `json:"name"`
	Size    int       `json:"size"`
	Preview string    `json:"preview"`
	URL     string    `json:"url,omitempty"` // 完整记录的地址，未关联对象存储时为空
	SavedAt time.Time `json:"savedAt"`
}

const previewRunes = 200

type redisList interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// RedisDiagnosticsWriter 在 Redis 列表中保留最近的诊断记录摘要，供管理端查看
type RedisDiagnosticsWriter struct {
	rdb        redisList
	key        string
	maxEntries int64
	now        func() time.Time
	objectURL  func(name string) string
}

func NewRedisDiagnosticsWriter(rdb redisList, key string, maxEntries int64) *RedisDiagnosticsWriter {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	return &RedisDiagnosticsWriter{rdb: rdb, key: key, maxEntries: maxEntries, now: time.Now}
}

// WithObjectURL 索引条目附带完整记录的地址，通常传入 StorageDiagnosticsWriter.URL
func (w *RedisDiagnosticsWriter) WithObjectURL(fn func(name string) string) *RedisDiagnosticsWriter {
	w.objectURL = fn
	return w
}

func (w *RedisDiagnosticsWriter) Save(ctx context.Context, name, content string) error {
	preview := []rune(content)
	if len(preview) > previewRunes {
		preview = preview[:previewRunes]
	}
	entry := DiagnosticsEntry{
		Name:    name,
		Size:    len(content),
		Preview: string(preview),
		SavedAt: w.now(),
	}
	if w.objectURL != nil {
		entry.URL = w.objectURL(name)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := w.rdb.LPush(ctx, w.key, data).Err(); err != nil {
		return fmt.Errorf("lpush diagnostics: %w", err)
	}
	return w.rdb.LTrim(ctx, w.key, 0, w.maxEntries-1).Err()
}

// Recent 最新的记录在前
func (w *RedisDiagnosticsWriter) Recent(ctx context.Context, limit int64) ([]DiagnosticsEntry, error) {
	if limit <= 0 || limit > w.maxEntries {
		limit = w.maxEntries
	}
	items, err := w.rdb.LRange(ctx, w.key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]DiagnosticsEntry, 0, len(items))
	for _, item := range items {
		var e DiagnosticsEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// MultiDiagnostics 依次写入所有目标，返回合并后的错误
type MultiDiagnostics []DiagnosticsSink

func (m MultiDiagnostics) Save(ctx context.Context, name, content string) error {
	var errs []error
	for _, sink := range m {
		if err := sink.Save(ctx, name, content); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
