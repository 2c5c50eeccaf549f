package benchmark

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vdp-support-service/internal/app/routes"
	"vdp-support-service/internal/domain/services"
	"vdp-support-service/internal/domain/services/container"
	"vdp-support-service/internal/infrastructure/config"
)

const rosterCSV = "Building,Flat No.,First Name,Middle Name,Last Name\n" +
	"Tower 1,101,Jonathan,,Smith\n" +
	"Tower 2,202,Priya,K,Menon\n"

// loginResponse 登录响应
type loginResponse struct {
	Code int `json:"code"`
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

var (
	baseURL    string
	authToken  string
	sheetReads int64
)

// TestMain 启动进程内服务，名册与表格由本地假服务提供
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	sheet := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			_, _ = io.Copy(io.Discard, r.Body)
			_, _ = w.Write([]byte(`{"result":"success"}`))
			return
		}
		atomic.AddInt64(&sheetReads, 1)
		// 模拟较慢的表格读取，让并发请求合并
		time.Sleep(20 * time.Millisecond)
		_, _ = w.Write([]byte(`[{"id":"VDP-AAAAAA","fullName":"JONA...TH","issueType":"VDP","urgency":"High"},{"ID":"VDP-BBBBBB","Urgency":"Low"}]`))
	}))
	roster := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rosterCSV))
	}))

	cfg := &config.Config{
		CORSOrigin:         "*",
		RosterCSVURL:       roster.URL,
		SheetScriptURL:     sheet.URL,
		SheetReadURL:       sheet.URL,
		SheetConfirmWrites: true,
		HTTPTimeout:        5 * time.Second,
		IntakeSessionTTL:   time.Hour,
		JWTSecretKey:       "benchmark-secret",
		JWTExpiry:          time.Hour,
		AdminCredentials:   map[string]string{"admin": "admin123"},
	}
	c := container.NewServiceContainer(nil, cfg, nil)
	c.GetService("roster").(services.InterfaceRosterService).Load(context.Background())

	server := httptest.NewServer(routes.SetupRouter(cfg, c))
	baseURL = server.URL + "/api"

	if err := getAuthToken(); err != nil {
		fmt.Printf("获取认证令牌失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	server.Close()
	sheet.Close()
	roster.Close()
	c.Close()
	os.Exit(code)
}

// getAuthToken 登录并保存令牌
func getAuthToken() error {
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "admin123"})
	resp, err := http.Post(baseURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("登录失败: HTTP %d", resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return err
	}
	authToken = lr.Data.Token
	return nil
}

func assertAllSucceeded(t *testing.T, name string, result *BenchmarkResult) {
	t.Helper()
	result.PrintResult()
	if result.FailureCount > 0 {
		t.Errorf("%s接口测试失败: 成功率 %.2f%%, 状态码 %v", name,
			float64(result.SuccessCount)/float64(result.TotalRequests)*100, result.StatusCodes)
	}
}

// TestTicketList 并发读取工单列表
func TestTicketList(t *testing.T) {
	before := atomic.LoadInt64(&sheetReads)
	benchmark := NewAPIBenchmark(baseURL, 10, 30, authToken)
	assertAllSucceeded(t, "工单列表", benchmark.RunGET("/admin/tickets"))

	reads := atomic.LoadInt64(&sheetReads) - before
	if reads >= 30 {
		t.Errorf("并发读取未合并: 表格被读取 %d 次", reads)
	}
}

// TestTicketExport 并发导出 CSV
func TestTicketExport(t *testing.T) {
	benchmark := NewAPIBenchmark(baseURL, 4, 8, authToken)
	assertAllSucceeded(t, "工单导出", benchmark.RunGET("/admin/tickets/export.csv"))
}

// TestRosterReload 并发重新加载名册
func TestRosterReload(t *testing.T) {
	benchmark := NewAPIBenchmark(baseURL, 4, 8, authToken)
	assertAllSucceeded(t, "名册重新加载", benchmark.RunPOST("/admin/roster/reload", nil))
}

// TestRosterMatch 名册匹配，命中缓存
func TestRosterMatch(t *testing.T) {
	benchmark := NewAPIBenchmark(baseURL, 4, 8, "")
	assertAllSucceeded(t, "名册匹配", benchmark.RunGET("/roster/match?building=tower%201&flat=101"))
}

// TestIntakeSessionConcurrentEdits 同一会话并发修改字段
func TestIntakeSessionConcurrentEdits(t *testing.T) {
	resp, err := http.Post(baseURL+"/intake/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("创建会话失败: %v", err)
	}
	defer resp.Body.Close()
	var created struct {
		Data services.SessionView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("解析会话失败: %v", err)
	}

	benchmark := NewAPIBenchmark(baseURL, 4, 8, "")
	result := benchmark.RunPUT("/intake/sessions/"+created.Data.ID+"/fields", map[string]string{"towerBlock": "Tower 2", "unitNumber": "202"})
	assertAllSucceeded(t, "会话字段修改", result)
}
