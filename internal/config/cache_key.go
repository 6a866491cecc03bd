package config

import "fmt"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ExamPaperKey returns the cache key for an exam's sanitized question paper.
func (r *CacheKeyStruct) ExamPaperKey(examID string) string {
	return fmt.Sprintf("exam:%s:paper", examID)
}

// ExamWindowKey returns the cache key for an exam's active window.
func (r *CacheKeyStruct) ExamWindowKey(examID string) string {
	return fmt.Sprintf("exam:%s:window", examID)
}

// SubmissionChannel returns the Redis PubSub channel carrying submission
// events for an exam, consumed by the monitor WebSocket.
func (r *CacheKeyStruct) SubmissionChannel(examID string) string {
	return fmt.Sprintf("exam:%s:submissions", examID)
}

var CacheKey = NewCacheKeyStruct()
