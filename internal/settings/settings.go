package settings

import (
	"os"
	"strconv"
	"strings"

	xerrors "github.com/Team-Watson-Denver/plugin-privy/internal/errors"
)

// 插件在宿主配置中读取的键名。
const (
	KeyAppID                  = "PRIVY_APP_ID"
	KeyAppSecret              = "PRIVY_APP_SECRET"
	KeyAuthorizationSignature = "PRIVY_AUTHORIZATION_SIGNATURE"
	KeyMonadRPCURL            = "PRIVY_MONAD_RPC_URL"
	KeyMonadChainID           = "PRIVY_MONAD_CHAIN_ID"
)

// Store 定义宿主提供的配置读取能力。
type Store interface {
	// Get 返回键对应的配置值，不存在时 ok 为 false。
	Get(key string) (value string, ok bool)
}

// MapStore 是基于内存映射的 Store 实现，主要用于测试与嵌入场景。
type MapStore map[string]string

// Get 实现 Store 接口。
func (m MapStore) Get(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

type envStore struct{}

// Get 实现 Store 接口。
func (envStore) Get(key string) (string, bool) {
	return os.LookupEnv(key)
}

// FromEnv 返回以进程环境变量作为来源的 Store。
func FromEnv() Store {
	return envStore{}
}

// Config 汇总了访问 Privy API 所需的全部凭证与可选参数。
// 每次动作调用前都会重新解析，插件自身不持有全局配置。
type Config struct {
	AppID     string
	AppSecret string
	// AuthorizationSignature 是可选的预签名请求头，为空表示不附带。
	AuthorizationSignature string
	MonadRPCURL            string
	// MonadChainID 为 0 表示未配置。
	MonadChainID uint64
}

// HasMonadRPC 判断是否配置了 Monad 节点。
func (c *Config) HasMonadRPC() bool {
	return c != nil && c.MonadRPCURL != ""
}

// Resolve 从 Store 中读取并校验插件配置。
// 必填项缺失时返回 MISSING_CONFIGURATION 错误，可选项缺失不视为错误。
func Resolve(store Store) (*Config, error) {
	if store == nil {
		return nil, xerrors.New(xerrors.CodeMissingConfiguration, "未提供配置存储")
	}

	appID := lookup(store, KeyAppID)
	if appID == "" {
		return nil, xerrors.New(xerrors.CodeMissingConfiguration, "缺少必填配置 "+KeyAppID)
	}

	appSecret := lookup(store, KeyAppSecret)
	if appSecret == "" {
		return nil, xerrors.New(xerrors.CodeMissingConfiguration, "缺少必填配置 "+KeyAppSecret)
	}

	cfg := &Config{
		AppID:                  appID,
		AppSecret:              appSecret,
		AuthorizationSignature: lookup(store, KeyAuthorizationSignature),
		MonadRPCURL:            lookup(store, KeyMonadRPCURL),
	}

	if raw := lookup(store, KeyMonadChainID); raw != "" {
		chainID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, xerrors.Wrap(xerrors.CodeInvalidArgument, err, KeyMonadChainID+" 不是合法的链 ID")
		}
		cfg.MonadChainID = chainID
	}

	return cfg, nil
}

func lookup(store Store, key string) string {
	value, ok := store.Get(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
