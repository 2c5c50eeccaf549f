package benchmark

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"
)

// APIBenchmark 并发压测指定接口
type APIBenchmark struct {
	BaseURL     string
	Concurrency int
	Requests    int
	AuthToken   string
	Client      *http.Client
}

// BenchmarkResult 压测结果
type BenchmarkResult struct {
	URL            string        `json:"url"`
	Method         string        `json:"method"`
	Concurrency    int           `json:"concurrency"`
	TotalRequests  int           `json:"total_requests"`
	SuccessCount   int           `json:"success_count"`
	FailureCount   int           `json:"failure_count"`
	TotalTime      time.Duration `json:"total_time"`
	AverageTime    time.Duration `json:"average_time"`
	P95Time        time.Duration `json:"p95_time"`
	MaxTime        time.Duration `json:"max_time"`
	RequestsPerSec float64       `json:"requests_per_sec"`
	StatusCodes    map[int]int   `json:"status_codes"`
	Errors         []string      `json:"errors"`
}

type requestResult struct {
	duration   time.Duration
	statusCode int
	err        error
}

// NewAPIBenchmark 创建压测实例
func NewAPIBenchmark(baseURL string, concurrency, requests int, authToken string) *APIBenchmark {
	if concurrency < 1 {
		concurrency = 1
	}
	return &APIBenchmark{
		BaseURL:     baseURL,
		Concurrency: concurrency,
		Requests:    requests,
		AuthToken:   authToken,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// RunGET 压测 GET 接口
func (b *APIBenchmark) RunGET(path string) *BenchmarkResult {
	return b.run(http.MethodGet, b.BaseURL+path, nil)
}

// RunPOST 压测 POST 接口
func (b *APIBenchmark) RunPOST(path string, payload interface{}) *BenchmarkResult {
	return b.runJSON(http.MethodPost, path, payload)
}

// RunPUT 压测 PUT 接口
func (b *APIBenchmark) RunPUT(path string, payload interface{}) *BenchmarkResult {
	return b.runJSON(http.MethodPut, path, payload)
}

func (b *APIBenchmark) runJSON(method, path string, payload interface{}) *BenchmarkResult {
	url := b.BaseURL + path
	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return &BenchmarkResult{URL: url, Method: method, Errors: []string{fmt.Sprintf("JSON编码错误: %v", err)}}
		}
		body = data
	}
	return b.run(method, url, body)
}

func (b *APIBenchmark) do(method, url string, payload []byte) requestResult {
	start := time.Now()
	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	if err != nil {
		return requestResult{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if b.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+b.AuthToken)
	}

	resp, err := b.Client.Do(req)
	if err != nil {
		return requestResult{err: err}
	}
	defer resp.Body.Close()
	// 读完响应体才能复用连接
	_, _ = io.Copy(io.Discard, resp.Body)

	return requestResult{duration: time.Since(start), statusCode: resp.StatusCode}
}

// run 用固定数量的 worker 发送全部请求
func (b *APIBenchmark) run(method, url string, payload []byte) *BenchmarkResult {
	jobs := make(chan struct{})
	results := make(chan requestResult, b.Requests)

	var wg sync.WaitGroup
	for i := 0; i < b.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- b.do(method, url, payload)
			}
		}()
	}

	startTime := time.Now()
	for i := 0; i < b.Requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()
	close(results)
	elapsed := time.Since(startTime)

	res := &BenchmarkResult{
		URL:           url,
		Method:        method,
		Concurrency:   b.Concurrency,
		TotalRequests: b.Requests,
		TotalTime:     elapsed,
		StatusCodes:   make(map[int]int),
	}

	var durations []time.Duration
	var total time.Duration
	for r := range results {
		if r.err != nil {
			res.FailureCount++
			res.Errors = append(res.Errors, r.err.Error())
			continue
		}
		durations = append(durations, r.duration)
		total += r.duration
		res.StatusCodes[r.statusCode]++
		if r.statusCode >= 200 && r.statusCode < 300 {
			res.SuccessCount++
		} else {
			res.FailureCount++
		}
	}

	if len(durations) > 0 {
		sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
		res.AverageTime = total / time.Duration(len(durations))
		res.P95Time = durations[(len(durations)*95+99)/100-1]
		res.MaxTime = durations[len(durations)-1]
	}
	if elapsed > 0 {
		res.RequestsPerSec = float64(b.Requests) / elapsed.Seconds()
	}
	return res
}

// PrintResult 打印压测结果
func (r *BenchmarkResult) PrintResult() {
	fmt.Printf("%s %s\n", r.Method, r.URL)
	fmt.Printf("  并发数: %d, 请求数: %d, 成功: %d, 失败: %d\n", r.Concurrency, r.TotalRequests, r.SuccessCount, r.FailureCount)
	fmt.Printf("  总耗时: %v, 平均: %v, P95: %v, 最大: %v, QPS: %.2f\n", r.TotalTime, r.AverageTime, r.P95Time, r.MaxTime, r.RequestsPerSec)
	fmt.Printf("  状态码: %v\n", r.StatusCodes)
	if len(r.Errors) > 0 {
		fmt.Printf("  首个错误: %s\n", r.Errors[0])
	}
}
