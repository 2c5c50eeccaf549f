package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// 外部表格接口返回体的读取上限
const maxResponseBytes = 10 << 20

// newHTTPClient 创建访问表格与名册的客户端，timeout 为 0 表示不限制
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// fetchText 发起 GET 请求并返回状态码与响应体
func fetchText(ctx context.Context, client *http.Client, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("构建请求失败: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("读取响应失败: %w", err)
	}
	return resp.StatusCode, body, nil
}

func isSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}
