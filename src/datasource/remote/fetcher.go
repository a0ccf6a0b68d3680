package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// TransferError 下载失败: 网络错误, 非2xx状态或目标文件无法写入
type TransferError struct {
	URL  string
	Dest string
	Err  error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("fetch %s -> %s: %v", e.URL, e.Dest, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }

// Job 一个待下载的资源
type Job struct {
	URL  string
	Dest string
}

// Fetcher 将远程资源原样写入本地文件
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	// OnDone 每个文件下载完成后调用, 可为 nil
	OnDone func(job Job, bytes int64, elapsed time.Duration)
}

// NewFetcher client 为 nil 时使用 http.DefaultClient, timeout 为 0 表示不限制
func NewFetcher(client *http.Client, timeout time.Duration) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, timeout: timeout}
}

// URL 按固定模板拼接下载地址: <base>/<file>
func URL(baseURL, file string) string {
	return strings.TrimRight(baseURL, "/") + "/" + file
}

// Fetch 下载 url 到 dest, 已存在的文件会被截断.
// 失败时删除写了一半的 dest 并返回 *TransferError.
func (f *Fetcher) Fetch(ctx context.Context, url, dest string) error {
	start := time.Now()
	n, err := f.fetch(ctx, url, dest)
	if err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("清理未完成的文件失败: %w", rmErr))
		}
		return &TransferError{URL: url, Dest: dest, Err: err}
	}
	if f.OnDone != nil {
		f.OnDone(Job{URL: url, Dest: dest}, n, time.Since(start))
	}
	return nil
}

func (f *Fetcher) fetch(ctx context.Context, url, dest string) (int64, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

// FetchAll 下载全部任务, 返回第一个错误.
// concurrency <= 1 时按顺序逐个下载, 否则最多 concurrency 个并发.
// 返回时所有任务都已结束.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job, concurrency int) error {
	if concurrency <= 1 {
		for _, job := range jobs {
			if err := f.Fetch(ctx, job.URL, job.Dest); err != nil {
				return err
			}
		}
		return nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			return f.Fetch(ctx, job.URL, job.Dest)
		})
	}
	return g.Wait()
}
