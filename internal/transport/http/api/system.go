package api

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"todo-server-go/internal/domain/auth"
	"todo-server-go/internal/platform/logging"
	httptransport "todo-server-go/internal/transport/http"
)

// Counter reports how many rows an aggregate holds.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// SystemService reports process and host health for operators, plus
// row counts for the two main aggregates.
type SystemService struct {
	resolver *auth.BearerResolver
	users    Counter
	todos    Counter
	logger   *logging.Logger
	started  time.Time
}

func NewSystemService(
	resolver *auth.BearerResolver,
	users, todos Counter,
	logger *logging.Logger,
) (*SystemService, error) {
	if resolver == nil {
		return nil, errors.New("system service requires a bearer resolver")
	}
	return &SystemService{
		resolver: resolver,
		users:    users,
		todos:    todos,
		logger:   logger,
		started:  time.Now(),
	}, nil
}

func (s *SystemService) Register(ctx context.Context, group *gin.RouterGroup) error {
	group.GET("/system/status",
		httptransport.RequireBearer(s.resolver, s.logger), s.handleStatus)
	s.logger.InfoTag("HTTP", "system API routes registered")
	return nil
}

func (s *SystemService) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()
	status := gin.H{
		"uptime":     time.Since(s.started).Round(time.Second).String(),
		"goroutines": runtime.NumGoroutine(),
	}

	if s.users != nil {
		if count, err := s.users.Count(ctx); err == nil {
			status["total_users"] = count
		}
	}
	if s.todos != nil {
		if count, err := s.todos.Count(ctx); err == nil {
			status["total_todos"] = count
		}
	}

	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		status["cpu_percent"] = percents[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		status["memory_percent"] = vm.UsedPercent
		status["memory_total"] = vm.Total
		status["memory_used"] = vm.Used
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		status["hostname"] = info.Hostname
		status["os"] = info.OS
		status["platform"] = info.Platform
		status["host_uptime"] = info.Uptime
	}

	httptransport.RespondSuccess(c, http.StatusOK, status, "")
}
