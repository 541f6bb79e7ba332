package privy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	xerrors "github.com/Team-Watson-Denver/plugin-privy/internal/errors"
)

const (
	defaultBaseURL = "https://api.privy.io/v1"
	defaultTimeout = 30 * time.Second

	headerAppID          = "privy-app-id"
	headerAuthSignature  = "privy-authorization-signature"
	headerIdempotencyKey = "privy-idempotency-key"
)

// Config 描述了访问 Privy REST API 所需的信息。
type Config struct {
	AppID     string
	AppSecret string
	// AuthorizationSignature 是可选的预签名请求头，由宿主在需要时提供。
	AuthorizationSignature string
	BaseURL                string
	Timeout                time.Duration
	// HTTPClient 允许测试注入自定义传输，为空时使用带超时的默认客户端。
	HTTPClient *http.Client
}

// Client 封装对 Privy REST API 的单次请求/响应往返。
// 每个调用都是独立的：无重试、无退避、无跨调用状态。
type Client struct {
	appID      string
	appSecret  string
	signature  string
	baseURL    string
	httpClient *http.Client
}

// NewClient 根据配置创建 Privy 客户端。
func NewClient(cfg Config) (*Client, error) {
	appID := strings.TrimSpace(cfg.AppID)
	if appID == "" {
		return nil, errors.New("未提供 Privy App ID")
	}
	appSecret := strings.TrimSpace(cfg.AppSecret)
	if appSecret == "" {
		return nil, errors.New("未提供 Privy App Secret")
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		appID:      appID,
		appSecret:  appSecret,
		signature:  strings.TrimSpace(cfg.AuthorizationSignature),
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// Policies 返回策略资源客户端。
func (c *Client) Policies() *PolicyClient {
	return &PolicyClient{core: c}
}

// Wallets 返回钱包资源客户端。
func (c *Client) Wallets() *WalletClient {
	return &WalletClient{core: c}
}

// do 执行一次请求并把成功响应解码到 out。
// 非成功状态会读取 JSON 错误体，取其 message 字段构造远端错误；
// 错误体不可解析或缺少 message 时回退到 HTTP 状态文本。
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("序列化 Privy 请求失败: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("构建 Privy 请求失败: %w", err)
	}

	req.SetBasicAuth(c.appID, c.appSecret)
	req.Header.Set(headerAppID, c.appID)
	if c.signature != "" {
		req.Header.Set(headerAuthSignature, c.signature)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	// 变更类请求附带幂等键，远端据此吸收重复提交。
	if method == http.MethodPost || method == http.MethodPatch {
		req.Header.Set(headerIdempotencyKey, uuid.NewString())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return xerrors.Wrap(xerrors.CodeTimeout, err, "请求 Privy 超时")
		}
		return fmt.Errorf("请求 Privy 失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.remoteError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析 Privy 响应失败: %w", err)
	}
	return nil
}

// remoteError 将非成功响应转换为携带远端消息的统一错误。
func (c *Client) remoteError(resp *http.Response) error {
	message := ""
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(data) > 0 {
		var decoded struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		if json.Unmarshal(data, &decoded) == nil {
			message = strings.TrimSpace(decoded.Message)
			if message == "" {
				message = strings.TrimSpace(decoded.Error)
			}
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
		if message == "" {
			message = resp.Status
		}
	}
	return xerrors.New(xerrors.CodeRemoteAPIFailure, message,
		xerrors.WithMetadata("status", strconv.Itoa(resp.StatusCode)))
}
