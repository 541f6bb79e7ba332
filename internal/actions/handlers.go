package actions

import (
	"context"
	"fmt"
	"strings"

	xerrors "github.com/Team-Watson-Denver/plugin-privy/internal/errors"
	"github.com/Team-Watson-Denver/plugin-privy/internal/monad"
	"github.com/Team-Watson-Denver/plugin-privy/internal/privy"
)

// 每个动作都有自己的类型化参数结构，在进入处理逻辑前完成解析与校验，
// 处理函数内部不再直接接触松散的 map。

type getPolicyParams struct {
	PolicyID string
}

type createPolicyParams struct {
	Name string
}

type updatePolicyParams struct {
	PolicyID     string
	TokenName    string
	TokenAddress string
	// Operation 为 allow 或 deny，缺省按 allow 处理。
	Operation string
}

type createWalletParams struct {
	ChainType privy.ChainType
	PolicyIDs []string
}

type updateWalletParams struct {
	WalletID  string
	PolicyIDs []string
}

type sendTransactionParams struct {
	WalletID string
	To       string
	Value    string
	Data     string
}

type signTransactionParams struct {
	WalletID string
	Message  string
}

func (r *Registry) handleGetPolicy(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseGetPolicyParams(opts)
	if err != nil {
		return "", nil, err
	}

	policy, err := e.policies.Get(ctx, params.PolicyID)
	if err != nil {
		return "", nil, err
	}

	ruleCount := 0
	for _, mr := range policy.MethodRules {
		ruleCount += len(mr.Rules)
	}
	response := fmt.Sprintf("策略 %s (ID: %s) 当前包含 %d 条规则，默认动作 %s",
		policy.Name, policy.ID, ruleCount, policy.DefaultAction)
	return response, policy, nil
}

func (r *Registry) handleCreatePolicy(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseCreatePolicyParams(opts)
	if err != nil {
		return "", nil, err
	}

	policy, err := e.policies.Create(ctx, params.Name)
	if err != nil {
		return "", nil, err
	}

	response := fmt.Sprintf("策略创建成功: %s (ID: %s)，默认拒绝所有交易", policy.Name, policy.ID)
	return response, policy, nil
}

func (r *Registry) handleUpdatePolicy(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseUpdatePolicyParams(opts)
	if err != nil {
		return "", nil, err
	}

	// 读改写两步之间没有事务保证，远端的并发修改可能被本次提交覆盖。
	snapshot, err := e.policies.Get(ctx, params.PolicyID)
	if err != nil {
		return "", nil, err
	}

	var update privy.PolicyUpdate
	if params.Operation == "deny" {
		update = privy.Denylist(*snapshot, params.TokenName, params.TokenAddress)
	} else {
		update = privy.Allowlist(*snapshot, params.TokenName, params.TokenAddress)
	}

	policy, err := e.policies.Update(ctx, params.PolicyID, update)
	if err != nil {
		return "", nil, err
	}

	var response string
	if params.Operation == "deny" {
		response = fmt.Sprintf("已从策略 %s 移除代币 %s (%s) 的放行规则",
			policy.Name, params.TokenName, params.TokenAddress)
	} else {
		response = fmt.Sprintf("已将代币 %s (%s) 加入策略 %s 的白名单",
			params.TokenName, params.TokenAddress, policy.Name)
	}
	return response, policy, nil
}

func (r *Registry) handleCreateWallet(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseCreateWalletParams(opts)
	if err != nil {
		return "", nil, err
	}

	wallet, err := e.wallets.Create(ctx, params.ChainType, params.PolicyIDs)
	if err != nil {
		return "", nil, err
	}

	response := fmt.Sprintf("钱包创建成功: %s (地址: %s，链: %s，附加策略 %d 个)",
		wallet.ID, wallet.Address, wallet.ChainType, len(wallet.PolicyIDs))
	return response, wallet, nil
}

func (r *Registry) handleUpdateWallet(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseUpdateWalletParams(opts)
	if err != nil {
		return "", nil, err
	}

	wallet, err := e.wallets.Update(ctx, params.WalletID, params.PolicyIDs)
	if err != nil {
		return "", nil, err
	}

	response := fmt.Sprintf("钱包 %s 的策略列表已更新，现有策略 %d 个", wallet.ID, len(wallet.PolicyIDs))
	return response, wallet, nil
}

func (r *Registry) handleGetWallets(ctx context.Context, e *env, _ map[string]any) (string, any, error) {
	wallets, err := e.wallets.List(ctx)
	if err != nil {
		return "", nil, err
	}

	if len(wallets) == 0 {
		return "当前应用名下没有钱包", wallets, nil
	}

	addresses := make([]string, 0, len(wallets))
	for _, w := range wallets {
		addresses = append(addresses, w.Address)
	}
	response := fmt.Sprintf("共有 %d 个钱包: %s", len(wallets), strings.Join(addresses, ", "))
	return response, wallets, nil
}

func (r *Registry) handleSendTransaction(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseSendTransactionParams(opts)
	if err != nil {
		return "", nil, err
	}

	// 配置了 Monad 节点时提前建立连接：链标识取自节点侧，
	// 发送后复用同一连接补充链上快照。连接失败只记日志不影响交易。
	var prober ChainProber
	if e.cfg.HasMonadRPC() {
		client, err := r.dial(ctx, monad.Config{RPCURL: e.cfg.MonadRPCURL, ChainID: e.cfg.MonadChainID})
		if err != nil {
			r.log.Warn("连接 Monad 节点失败", "error", err)
		} else {
			prober = client
			defer prober.Close()
		}
	}

	caip2 := ""
	if prober != nil {
		caip2 = prober.CAIP2()
		if err := prober.VerifyChainID(ctx); err != nil {
			r.log.Warn("Monad 链 ID 校验未通过", "error", err)
		}
	} else if e.cfg.MonadChainID != 0 {
		caip2 = fmt.Sprintf("eip155:%d", e.cfg.MonadChainID)
	}

	result, err := e.wallets.SendTransaction(ctx, privy.SendTransactionParams{
		WalletID: params.WalletID,
		To:       params.To,
		Value:    params.Value,
		Data:     params.Data,
		CAIP2:    caip2,
	})
	if err != nil {
		return "", nil, err
	}

	data := map[string]any{"transaction": result}

	if prober != nil {
		if snapshot, err := prober.FetchSnapshot(ctx); err != nil {
			r.log.Warn("获取 Monad 快照失败", "error", err)
		} else {
			data["network"] = snapshot
		}
	}

	response := fmt.Sprintf("交易已提交: %s", result.Hash)
	return response, data, nil
}

func (r *Registry) handleSignTransaction(ctx context.Context, e *env, opts map[string]any) (string, any, error) {
	params, err := parseSignTransactionParams(opts)
	if err != nil {
		return "", nil, err
	}

	result, err := e.wallets.SignMessage(ctx, params.WalletID, params.Message)
	if err != nil {
		return "", nil, err
	}

	response := fmt.Sprintf("消息签名完成: %s", result.Signature)
	return response, result, nil
}

// ---- 参数解析 ----

func parseGetPolicyParams(opts map[string]any) (getPolicyParams, error) {
	policyID, err := requireString(opts, "policyId")
	if err != nil {
		return getPolicyParams{}, err
	}
	return getPolicyParams{PolicyID: policyID}, nil
}

func parseCreatePolicyParams(opts map[string]any) (createPolicyParams, error) {
	name, err := requireString(opts, "policyName")
	if err != nil {
		return createPolicyParams{}, err
	}
	return createPolicyParams{Name: name}, nil
}

func parseUpdatePolicyParams(opts map[string]any) (updatePolicyParams, error) {
	params := updatePolicyParams{}
	var err error
	if params.PolicyID, err = requireString(opts, "policyId"); err != nil {
		return params, err
	}
	if params.TokenName, err = requireString(opts, "tokenName"); err != nil {
		return params, err
	}
	if params.TokenAddress, err = requireString(opts, "tokenAddress"); err != nil {
		return params, err
	}

	operation := strings.ToLower(optionalString(opts, "operation"))
	switch operation {
	case "", "allow":
		params.Operation = "allow"
	case "deny":
		params.Operation = "deny"
	default:
		return params, xerrors.New(xerrors.CodeInvalidArgument,
			"operation 仅支持 allow 或 deny，收到: "+operation)
	}
	return params, nil
}

func parseCreateWalletParams(opts map[string]any) (createWalletParams, error) {
	params := createWalletParams{ChainType: privy.ChainEthereum}

	if raw := optionalString(opts, "chainType"); raw != "" {
		chainType := privy.ChainType(strings.ToLower(raw))
		switch chainType {
		case privy.ChainEthereum, privy.ChainSolana, privy.ChainMonad:
			params.ChainType = chainType
		default:
			return params, xerrors.New(xerrors.CodeInvalidArgument,
				"不支持的链类型: "+raw)
		}
	}

	params.PolicyIDs = stringSlice(opts, "policyIds")
	return params, nil
}

func parseUpdateWalletParams(opts map[string]any) (updateWalletParams, error) {
	params := updateWalletParams{}
	var err error
	if params.WalletID, err = requireString(opts, "walletId"); err != nil {
		return params, err
	}
	if _, ok := opts["policyIds"]; !ok {
		return params, xerrors.New(xerrors.CodeInvalidArgument, "缺少必填参数 policyIds")
	}
	params.PolicyIDs = stringSlice(opts, "policyIds")
	return params, nil
}

func parseSendTransactionParams(opts map[string]any) (sendTransactionParams, error) {
	params := sendTransactionParams{}
	var err error
	if params.WalletID, err = requireString(opts, "walletId"); err != nil {
		return params, err
	}
	if params.To, err = requireString(opts, "to"); err != nil {
		return params, err
	}
	if params.Value, err = requireString(opts, "value"); err != nil {
		return params, err
	}
	params.Data = optionalString(opts, "data")
	return params, nil
}

func parseSignTransactionParams(opts map[string]any) (signTransactionParams, error) {
	params := signTransactionParams{}
	var err error
	if params.WalletID, err = requireString(opts, "walletId"); err != nil {
		return params, err
	}
	if params.Message, err = requireString(opts, "message"); err != nil {
		return params, err
	}
	return params, nil
}

// requireString 从选项中提取必填字符串，缺失或为空视为参数错误。
func requireString(opts map[string]any, key string) (string, error) {
	value := optionalString(opts, key)
	if value == "" {
		return "", xerrors.New(xerrors.CodeInvalidArgument, "缺少必填参数 "+key)
	}
	return value, nil
}

// optionalString 提取可选字符串，非字符串类型一律视为缺失。
func optionalString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	if value, ok := opts[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

// stringSlice 兼容宿主可能传来的几种列表形态：
// []string、[]any（元素为字符串）或逗号分隔的单个字符串。
func stringSlice(opts map[string]any, key string) []string {
	if opts == nil {
		return nil
	}
	switch raw := opts[key].(type) {
	case []string:
		return raw
	case []any:
		values := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				values = append(values, strings.TrimSpace(s))
			}
		}
		return values
	case string:
		if strings.TrimSpace(raw) == "" {
			return []string{}
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
		return values
	default:
		return nil
	}
}
