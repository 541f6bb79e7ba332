package privy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// PolicyClient 提供 /policies 资源的创建、读取与更新。
type PolicyClient struct {
	core *Client
}

// createPolicyRequest 是创建策略时的固定模板：
// 以太坊链、单个 eth_sendTransaction MethodRule（规则为空）、默认 DENY。
type createPolicyRequest struct {
	Version       string       `json:"version"`
	Name          string       `json:"name"`
	ChainType     ChainType    `json:"chain_type"`
	MethodRules   []MethodRule `json:"method_rules"`
	DefaultAction RuleAction   `json:"default_action"`
}

// policyAPIVersion 是远端当前接受的策略结构版本。
const policyAPIVersion = "1.0"

// Create 在远端创建一个新的空白策略。
func (p *PolicyClient) Create(ctx context.Context, name string) (*Policy, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("策略名称不能为空")
	}

	payload := createPolicyRequest{
		Version:   policyAPIVersion,
		Name:      name,
		ChainType: ChainEthereum,
		MethodRules: []MethodRule{
			{Method: MethodEthSendTransaction, Rules: []Rule{}},
		},
		DefaultAction: ActionDeny,
	}

	var policy Policy
	if err := p.core.do(ctx, http.MethodPost, "/policies", payload, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Get 按标识读取策略快照。
func (p *PolicyClient) Get(ctx context.Context, policyID string) (*Policy, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return nil, errors.New("策略 ID 不能为空")
	}

	var policy Policy
	if err := p.core.do(ctx, http.MethodGet, "/policies/"+url.PathEscape(policyID), nil, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}

// Update 以 PATCH 提交编辑器计算出的可修改字段。
func (p *PolicyClient) Update(ctx context.Context, policyID string, update PolicyUpdate) (*Policy, error) {
	policyID = strings.TrimSpace(policyID)
	if policyID == "" {
		return nil, errors.New("策略 ID 不能为空")
	}

	var policy Policy
	if err := p.core.do(ctx, http.MethodPatch, "/policies/"+url.PathEscape(policyID), update, &policy); err != nil {
		return nil, err
	}
	return &policy, nil
}
