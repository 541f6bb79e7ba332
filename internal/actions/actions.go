package actions

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	xerrors "github.com/Team-Watson-Denver/plugin-privy/internal/errors"
	"github.com/Team-Watson-Denver/plugin-privy/internal/monad"
	"github.com/Team-Watson-Denver/plugin-privy/internal/privy"
	"github.com/Team-Watson-Denver/plugin-privy/internal/settings"
	"github.com/Team-Watson-Denver/plugin-privy/pkg/logger"
)

// 对宿主框架暴露的动作名称。
const (
	ActionGetPolicy       = "PRIVY_GET_POLICY"
	ActionCreatePolicy    = "PRIVY_CREATE_POLICY"
	ActionUpdatePolicy    = "PRIVY_UPDATE_POLICY"
	ActionCreateWallet    = "PRIVY_CREATE_WALLET"
	ActionUpdateWallet    = "PRIVY_UPDATE_WALLET"
	ActionGetWallets      = "PRIVY_GET_WALLETS"
	ActionSendTransaction = "PRIVY_SEND_TRANSACTION"
	ActionSignTransaction = "PRIVY_SIGN_TRANSACTION"
)

// Result 是动作执行后返回给宿主框架的统一信封。
// 所有错误都在这里收敛为 Success=false，绝不越过动作边界向外抛出。
type Result struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
	Data     any    `json:"data,omitempty"`
}

// Info 描述一个已注册动作，供宿主列举。
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ChainProber 是发送交易后用于补充链上快照的只读能力。
type ChainProber interface {
	FetchSnapshot(ctx context.Context) (monad.Snapshot, error)
	VerifyChainID(ctx context.Context) error
	CAIP2() string
	Close()
}

// Dialer 建立到 Monad 节点的连接，测试可注入替身。
type Dialer func(ctx context.Context, cfg monad.Config) (ChainProber, error)

// env 汇集单次动作调用所需的依赖。
// 凭证在每次调用时重新解析，调用之间不共享任何可变状态。
type env struct {
	cfg      *settings.Config
	policies *privy.PolicyClient
	wallets  *privy.WalletClient
}

type handler struct {
	description string
	mutating    bool
	run         func(ctx context.Context, e *env, opts map[string]any) (string, any, error)
}

// Registry 将动作名称映射到类型化的处理函数。
type Registry struct {
	store      settings.Store
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	dial       Dialer
	log        *slog.Logger
	audit      *slog.Logger
	handlers   map[string]handler
}

// Option 定义 Registry 的可选配置。
type Option func(*Registry)

// WithBaseURL 覆盖 Privy API 的基础地址，主要用于测试。
func WithBaseURL(baseURL string) Option {
	return func(r *Registry) {
		r.baseURL = baseURL
	}
}

// WithTimeout 覆盖 Privy API 的请求超时，零值沿用客户端默认值。
func WithTimeout(timeout time.Duration) Option {
	return func(r *Registry) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// WithHTTPClient 注入自定义 HTTP 传输。
func WithHTTPClient(client *http.Client) Option {
	return func(r *Registry) {
		if client != nil {
			r.httpClient = client
		}
	}
}

// WithDialer 覆盖 Monad 节点的连接方式。
func WithDialer(dial Dialer) Option {
	return func(r *Registry) {
		if dial != nil {
			r.dial = dial
		}
	}
}

// WithLogger 覆盖默认日志器。
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry 构造动作注册表。配置由宿主显式传入，不依赖任何进程级单例。
func NewRegistry(store settings.Store, opts ...Option) *Registry {
	r := &Registry{
		store: store,
		dial: func(ctx context.Context, cfg monad.Config) (ChainProber, error) {
			return monad.Dial(ctx, cfg)
		},
		log:   logger.Named("privy-actions"),
		audit: logger.Audit(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.handlers = map[string]handler{
		ActionGetPolicy: {
			description: "读取一个策略的当前规则",
			run:         r.handleGetPolicy,
		},
		ActionCreatePolicy: {
			description: "创建一个默认拒绝的空白交易策略",
			mutating:    true,
			run:         r.handleCreatePolicy,
		},
		ActionUpdatePolicy: {
			description: "在策略中放行或移除一个代币地址",
			mutating:    true,
			run:         r.handleUpdatePolicy,
		},
		ActionCreateWallet: {
			description: "创建一个托管钱包，可附加既有策略",
			mutating:    true,
			run:         r.handleCreateWallet,
		},
		ActionUpdateWallet: {
			description: "替换钱包挂载的策略列表",
			mutating:    true,
			run:         r.handleUpdateWallet,
		},
		ActionGetWallets: {
			description: "列出应用名下的全部钱包",
			run:         r.handleGetWallets,
		},
		ActionSendTransaction: {
			description: "通过托管钱包签名并广播一笔交易",
			mutating:    true,
			run:         r.handleSendTransaction,
		},
		ActionSignTransaction: {
			description: "通过托管钱包对消息进行签名",
			mutating:    true,
			run:         r.handleSignTransaction,
		},
	}
	return r
}

// Actions 返回全部已注册动作的描述，按名称排序。
func (r *Registry) Actions() []Info {
	infos := make([]Info, 0, len(r.handlers))
	for name, h := range r.handlers {
		infos = append(infos, Info{Name: name, Description: h.description})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Invoke 执行一个命名动作。未知名称、配置缺失、参数缺失与远端失败
// 都会被转换为 Success=false 的 Result，不会产生 panic 或错误返回值。
func (r *Registry) Invoke(ctx context.Context, name string, opts map[string]any) Result {
	h, ok := r.handlers[name]
	if !ok {
		return Result{Success: false, Response: "未知动作: " + name}
	}

	// 每次调用重新校验配置，缺失时不会发起任何网络请求。
	cfg, err := settings.Resolve(r.store)
	if err != nil {
		r.log.Warn("配置校验失败", "action", name, "error", err)
		return r.failure(err)
	}

	client, err := privy.NewClient(privy.Config{
		AppID:                  cfg.AppID,
		AppSecret:              cfg.AppSecret,
		AuthorizationSignature: cfg.AuthorizationSignature,
		BaseURL:                r.baseURL,
		Timeout:                r.timeout,
		HTTPClient:             r.httpClient,
	})
	if err != nil {
		return r.failure(err)
	}

	e := &env{cfg: cfg, policies: client.Policies(), wallets: client.Wallets()}
	response, data, err := h.run(ctx, e, opts)
	if err != nil {
		r.log.Warn("动作执行失败", "action", name, "error", err)
		return r.failure(err)
	}

	if h.mutating {
		r.audit.Info("privy 资源变更", "action", name, "response", response)
	}
	return Result{Success: true, Response: response, Data: data}
}

// failure 将错误转换为面向用户的失败结果。
// 远端消息中出现 policy/denied 字样时，改写为明确的合规策略提示。
func (r *Registry) failure(err error) Result {
	message := xerrors.MessageOf(err)
	if xerrors.CodeOf(err) == xerrors.CodeRemoteAPIFailure && isPolicyDenial(message) {
		return Result{
			Success:  false,
			Response: "操作被合规策略限制: " + message,
		}
	}
	return Result{Success: false, Response: message}
}

func isPolicyDenial(message string) bool {
	lowered := strings.ToLower(message)
	return strings.Contains(lowered, "policy") || strings.Contains(lowered, "denied")
}
