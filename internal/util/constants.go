package util

const DateFormat = "2006-01-02"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

const (
	MimeJSON = "application/json"
	MimeText = "text/plain; charset=utf-8"
)

// 计划来源，写入日志与诊断记录
const (
	PlanSourceProvider = "provider"
	PlanSourceFallback = "fallback"
)
