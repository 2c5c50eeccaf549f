package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"vdp-support-service/internal/domain/models"
	"vdp-support-service/internal/infrastructure/config"
	"vdp-support-service/pkg/logger"
)

var (
	// ErrRosterHeader 名册表头缺少必需列
	ErrRosterHeader = errors.New("名册表头缺少 BUILDING、FLAT NO. 或 FIRST NAME 列")
	// ErrRosterUnavailable 名册拉取失败
	ErrRosterUnavailable = errors.New("名册暂不可用")
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// InterfaceRosterService 定义住户名册服务接口
type InterfaceRosterService interface {
	Load(ctx context.Context) []models.ResidentRecord
	Reload(ctx context.Context) (RosterStats, error)
	Match(building, flatNo string) (models.ResidentRecord, bool)
	FindByName(name string) []models.ResidentRecord
	Records() []models.ResidentRecord
	Stats() RosterStats
	StartAutoRefresh(spec string) (func(), error)
}

// RosterStats 名册当前状态
type RosterStats struct {
	Records       int        `json:"records"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LastAttemptAt *time.Time `json:"last_attempt_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// RosterService 持有从发布的 CSV 加载的住户名册
type RosterService struct {
	URL    string
	Client *http.Client

	mu            sync.RWMutex
	records       []models.ResidentRecord
	loadedAt      time.Time
	lastAttemptAt time.Time
	lastError     string
}

// NewRosterService 创建名册服务，需调用 Load 后才有数据
func NewRosterService(cfg *config.Config) *RosterService {
	return &RosterService{
		URL:    cfg.RosterCSVURL,
		Client: newHTTPClient(cfg.HTTPTimeout),
	}
}

// NewRosterServiceWithRecords 使用给定名册创建服务
func NewRosterServiceWithRecords(records []models.ResidentRecord) *RosterService {
	return &RosterService{
		Client:   newHTTPClient(0),
		records:  records,
		loadedAt: time.Now(),
	}
}

// ParseRosterCSV 解析名册 CSV。
// 按逗号直接切分，不支持带引号的字段；楼栋或房号为空的行被丢弃。
func ParseRosterCSV(text string) ([]models.ResidentRecord, error) {
	var lines []string
	for _, line := range lineBreak.Split(text, -1) {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return []models.ResidentRecord{}, nil
	}

	headers := strings.Split(lines[0], ",")
	for i, h := range headers {
		headers[i] = strings.ToUpper(strings.TrimSpace(h))
	}
	buildingIdx := indexOf(headers, "BUILDING")
	flatIdx := indexOf(headers, "FLAT NO.")
	firstIdx := indexOf(headers, "FIRST NAME")
	middleIdx := indexOf(headers, "MIDDLE NAME")
	lastIdx := indexOf(headers, "LAST NAME")

	if buildingIdx < 0 || flatIdx < 0 || firstIdx < 0 {
		return nil, fmt.Errorf("%w: %v", ErrRosterHeader, headers)
	}

	records := make([]models.ResidentRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := strings.Split(line, ",")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		r := models.ResidentRecord{
			Building:   cellAt(cells, buildingIdx),
			FlatNo:     cellAt(cells, flatIdx),
			FirstName:  cellAt(cells, firstIdx),
			MiddleName: cellAt(cells, middleIdx),
			LastName:   cellAt(cells, lastIdx),
		}
		if r.Building == "" || r.FlatNo == "" {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func indexOf(headers []string, name string) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	return -1
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

// fetch 拉取并解析名册，不修改已持有的数据
func (s *RosterService) fetch(ctx context.Context) ([]models.ResidentRecord, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("%w: 未配置名册地址", ErrRosterUnavailable)
	}
	status, body, err := fetchText(ctx, s.Client, s.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRosterUnavailable, err)
	}
	if !isSuccessStatus(status) {
		return nil, fmt.Errorf("%w: HTTP %d", ErrRosterUnavailable, status)
	}
	return ParseRosterCSV(string(body))
}

// 1 Load 拉取名册并返回本次结果。
// 失败时记录日志并返回空名册，此前成功加载的名册继续保留。
func (s *RosterService) Load(ctx context.Context) []models.ResidentRecord {
	records, err := s.fetch(ctx)
	now := time.Now()

	s.mu.Lock()
	s.lastAttemptAt = now
	if err != nil {
		s.lastError = err.Error()
		s.mu.Unlock()
		logger.Error("加载住户名册失败: %v", err)
		globalMetrics().recordRosterLoad("failure", 0)
		return []models.ResidentRecord{}
	}
	s.records = records
	s.loadedAt = now
	s.lastError = ""
	s.mu.Unlock()

	logger.Info("住户名册已加载，共 %d 条", len(records))
	globalMetrics().recordRosterLoad("success", len(records))
	return records
}

// 2 Reload 重新加载名册，失败时返回错误供管理端展示
func (s *RosterService) Reload(ctx context.Context) (RosterStats, error) {
	s.Load(ctx)
	stats := s.Stats()
	if stats.LastError != "" {
		return stats, fmt.Errorf("%w: %s", ErrRosterUnavailable, stats.LastError)
	}
	return stats, nil
}

// 3 Match 按楼栋与房号匹配住户
func (s *RosterService) Match(building, flatNo string) (models.ResidentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return MatchResident(s.records, building, flatNo)
}

// 4 FindByName 按规范化姓名查找住户
func (s *RosterService) FindByName(name string) []models.ResidentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FindResidentsByName(s.records, name)
}

// 5 Records 返回当前名册的副本
func (s *RosterService) Records() []models.ResidentRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ResidentRecord, len(s.records))
	copy(out, s.records)
	return out
}

// 6 Stats 返回名册状态
func (s *RosterService) Stats() RosterStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := RosterStats{Records: len(s.records), LastError: s.lastError}
	if !s.loadedAt.IsZero() {
		t := s.loadedAt
		stats.LoadedAt = &t
	}
	if !s.lastAttemptAt.IsZero() {
		t := s.lastAttemptAt
		stats.LastAttemptAt = &t
	}
	return stats
}

// 7 StartAutoRefresh 按 cron 表达式定时刷新名册，返回停止函数。
// spec 为空时不启动。
func (s *RosterService) StartAutoRefresh(spec string) (func(), error) {
	if strings.TrimSpace(spec) == "" {
		return func() {}, nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		timeout := s.Client.Timeout
		if timeout == 0 {
			timeout = time.Minute
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.Load(ctx)
	}); err != nil {
		return nil, fmt.Errorf("名册刷新计划无效 %q: %w", spec, err)
	}
	c.Start()
	logger.Info("住户名册定时刷新已启动: %s", spec)
	return func() { <-c.Stop().Done() }, nil
}
