package question

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// maxResponseSize 远程出题响应的最大字节数
const maxResponseSize = 64 * 1024

// RemoteProvider 通过HTTP调用外部出题服务
//
// 请求体为JSON编码的Request，响应体为JSON编码的Question。
type RemoteProvider struct {
	url    string
	client *http.Client
}

// NewRemoteProvider 创建远程出题服务
func NewRemoteProvider(url string, timeout time.Duration) *RemoteProvider {
	return &RemoteProvider{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Generate 请求远程服务出题
func (p *RemoteProvider) Generate(ctx context.Context, req Request) (*models.Question, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrMessageFormat, "编码出题请求")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderUnavailable, "创建出题请求")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrProviderUnavailable, "出题服务返回状态码 %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrProviderUnavailable, "读取出题响应")
	}

	q := &models.Question{}
	if err := json.Unmarshal(data, q); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidQuestion, "解析出题响应")
	}
	if err := Validate(q); err != nil {
		return nil, err
	}
	if o := req.Override; o != nil && !matchesOverride(q, o) {
		return nil, errors.Newf(errors.ErrInvalidQuestion, "远程题目答案 %d 与场景不符", q.Answer)
	}
	return q, nil
}

// matchesOverride 远程服务可以改写题面，但答案必须与场景一致
func matchesOverride(q *models.Question, o *Override) bool {
	expected, err := Contextual(*o, fixedSource{}, nil)
	if err != nil {
		return false
	}
	return q.Answer == expected.Answer
}

// fixedSource 只用于计算答案，不关心选项的随机性
type fixedSource struct{}

func (fixedSource) IntN(int) int { return 0 }

func (fixedSource) Float64() float64 { return 0 }

func (fixedSource) Shuffle(int, func(i, j int)) {}
