package cache

import "fmt"

// HistoryPrefix covers every cached history page; invalidated wholesale on write.
const HistoryPrefix = "history:"

func HistoryKey(limit int) string {
	return fmt.Sprintf("%s%d", HistoryPrefix, limit)
}

func RateLimitKey(clientIP string) string {
	return fmt.Sprintf("ratelimit:%s", clientIP)
}
