package health

import (
	"context"
	"encoding/json"
	"runtime"
	"strconv"
	"time"

	"erp-backend/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DBPinger is optional for health check. If nil, database is reported as disconnected.
type DBPinger interface {
	Ping() error
}

// CollectResult is the payload of /health/json.
type CollectResult struct {
	Status       string               `json:"status"`
	Runtime      RuntimeInfo          `json:"runtime"`
	Traffic      TrafficInfo          `json:"traffic"`
	Dependencies map[string]DepStatus `json:"dependencies"`
}

type RuntimeInfo struct {
	UptimeSeconds int64      `json:"uptimeSeconds"`
	Memory        MemoryInfo `json:"memory"`
	Goroutines    int        `json:"goroutines"`
	Platform      string     `json:"platform"`
	GoVersion     string     `json:"goVersion"`
}

type MemoryInfo struct {
	AllocMB    int `json:"allocMb"`
	HeapUsedMB int `json:"heapUsedMb"`
}

type TrafficInfo struct {
	TotalRequests   int         `json:"totalRequests"`
	SuccessCount    int         `json:"successCount"`
	FailedCount     int         `json:"failedCount"`
	SuccessRate     string      `json:"successRate"`
	AvgResponseTime interface{} `json:"avgResponseTime"`
	LastRequest     interface{} `json:"lastRequest"`
}

type DepStatus struct {
	Status string      `json:"status"`
	PingMs interface{} `json:"pingMs"`
}

const (
	statusConnected     = "connected"
	statusDisconnected  = "disconnected"
	statusNotConfigured = "not_configured"
	statusError         = "error"
)

// CollectHealth gathers dependency status from the database and, when configured, Redis along with
// the traffic counters HealthMarker keeps there. Redis is optional: without it the service runs on
// the in-process quotation lock and reports no traffic.
func CollectHealth(ctx context.Context, rdb *redis.Client, db DBPinger, startedAt time.Time) CollectResult {
	result := CollectResult{Dependencies: make(map[string]DepStatus)}

	dbStatus := statusDisconnected
	var dbPingMs *int64
	if db != nil {
		start := time.Now()
		if err := db.Ping(); err == nil {
			ms := time.Since(start).Milliseconds()
			dbPingMs = &ms
			dbStatus = statusConnected
		} else {
			dbStatus = statusError
		}
	}
	result.Dependencies["database"] = DepStatus{Status: dbStatus, PingMs: dbPingMs}

	redisStatus := statusNotConfigured
	var redisPingMs *int64
	stats := TrafficInfo{AvgResponseTime: 0, SuccessRate: "100"}
	if rdb != nil {
		start := time.Now()
		if err := rdb.Ping(ctx).Err(); err == nil {
			ms := time.Since(start).Milliseconds()
			redisPingMs = &ms
			redisStatus = statusConnected
			stats, startedAt = trafficStats(ctx, rdb, stats, startedAt)
		} else {
			redisStatus = statusError
		}
	}
	result.Dependencies["redis"] = DepStatus{Status: redisStatus, PingMs: redisPingMs}
	result.Traffic = stats

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	uptime := int64(time.Since(startedAt).Seconds())
	if uptime < 0 {
		uptime = 0
	}
	result.Runtime = RuntimeInfo{
		UptimeSeconds: uptime,
		Memory:        MemoryInfo{AllocMB: int(m.Alloc / 1024 / 1024), HeapUsedMB: int(m.HeapInuse / 1024 / 1024)},
		Goroutines:    runtime.NumGoroutine(),
		Platform:      runtime.GOOS + " (" + runtime.GOARCH + ")",
		GoVersion:     runtime.Version(),
	}

	if dbStatus == statusConnected && redisStatus != statusError {
		result.Status = "ok"
	} else {
		result.Status = "issue"
	}
	return result
}

// trafficStats reads the HealthMarker counters. The Redis start time, when present, wins over the
// process start so uptime spans restarts until the stats are reset.
func trafficStats(ctx context.Context, rdb *redis.Client, stats TrafficInfo, startedAt time.Time) (TrafficInfo, time.Time) {
	totalReq, _ := rdb.Get(ctx, middleware.KeyReqTotal).Result()
	totalErr, _ := rdb.Get(ctx, middleware.KeyReqErrors).Result()
	totalTime, _ := rdb.Get(ctx, middleware.KeyResTime).Result()
	resCount, _ := rdb.Get(ctx, middleware.KeyResCount).Result()
	startTimeStr, _ := rdb.Get(ctx, middleware.KeyStartTime).Result()
	lastReqStr, _ := rdb.Get(ctx, middleware.KeyLastReq).Result()

	if startTimeStr != "" {
		if ms, err := strconv.ParseInt(startTimeStr, 10, 64); err == nil {
			startedAt = time.UnixMilli(ms)
		}
	} else {
		rdb.Set(ctx, middleware.KeyStartTime, startedAt.UnixMilli(), 0)
	}

	stats.TotalRequests, _ = strconv.Atoi(totalReq)
	stats.FailedCount, _ = strconv.Atoi(totalErr)
	stats.SuccessCount = stats.TotalRequests - stats.FailedCount
	if stats.TotalRequests > 0 {
		stats.SuccessRate = strconv.FormatFloat(float64(stats.SuccessCount)/float64(stats.TotalRequests)*100, 'f', 1, 64)
	}
	timeSum, _ := strconv.ParseFloat(totalTime, 64)
	countSum, _ := strconv.Atoi(resCount)
	if countSum > 0 {
		stats.AvgResponseTime = strconv.FormatFloat(timeSum/float64(countSum), 'f', 2, 64)
	}
	if lastReqStr != "" {
		var lastReq map[string]interface{}
		_ = json.Unmarshal([]byte(lastReqStr), &lastReq)
		stats.LastRequest = lastReq
	}
	return stats, startedAt
}
