package privy

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// WalletClient 提供 /wallets 资源的创建、更新、列举与 RPC 调用。
type WalletClient struct {
	core *Client
}

// DefaultCAIP2 是未配置目标网络时发送交易使用的链标识。
const DefaultCAIP2 = "eip155:1"

type createWalletRequest struct {
	ChainType ChainType `json:"chain_type"`
	PolicyIDs []string  `json:"policy_ids,omitempty"`
}

type updateWalletRequest struct {
	PolicyIDs []string `json:"policy_ids"`
}

type listWalletsResponse struct {
	Data []Wallet `json:"data"`
}

// SendTransactionParams 描述一次委托远端签名并广播的交易。
type SendTransactionParams struct {
	WalletID string
	To       string
	// Value 原样透传给远端，十进制或 0x 前缀十六进制均可。
	Value string
	Data  string
	CAIP2 string
}

type rpcRequest struct {
	Method Method `json:"method"`
	CAIP2  string `json:"caip2,omitempty"`
	Params any    `json:"params"`
}

type rpcTransaction struct {
	To    string `json:"to"`
	Value string `json:"value"`
	Data  string `json:"data,omitempty"`
}

type rpcResponse struct {
	Method Method `json:"method"`
	Data   struct {
		Hash      string `json:"hash"`
		CAIP2     string `json:"caip2"`
		Signature string `json:"signature"`
		Encoding  string `json:"encoding"`
	} `json:"data"`
}

// Create 创建一个托管钱包，可同时附加既有策略。
func (w *WalletClient) Create(ctx context.Context, chainType ChainType, policyIDs []string) (*Wallet, error) {
	if chainType == "" {
		chainType = ChainEthereum
	}

	payload := createWalletRequest{ChainType: chainType, PolicyIDs: policyIDs}

	var wallet Wallet
	if err := w.core.do(ctx, http.MethodPost, "/wallets", payload, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Update 整体替换钱包挂载的策略 ID 列表。
func (w *WalletClient) Update(ctx context.Context, walletID string, policyIDs []string) (*Wallet, error) {
	walletID = strings.TrimSpace(walletID)
	if walletID == "" {
		return nil, errors.New("钱包 ID 不能为空")
	}

	var wallet Wallet
	if err := w.core.do(ctx, http.MethodPatch, "/wallets/"+url.PathEscape(walletID), updateWalletRequest{PolicyIDs: policyIDs}, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

// List 返回应用名下的全部钱包。
func (w *WalletClient) List(ctx context.Context) ([]Wallet, error) {
	var decoded listWalletsResponse
	if err := w.core.do(ctx, http.MethodGet, "/wallets", nil, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

// SendTransaction 让远端使用钱包私钥签名并广播一笔交易。
// 策略校验由远端引擎完成，拒绝时返回携带远端消息的错误。
func (w *WalletClient) SendTransaction(ctx context.Context, params SendTransactionParams) (*TransactionResult, error) {
	walletID := strings.TrimSpace(params.WalletID)
	if walletID == "" {
		return nil, errors.New("钱包 ID 不能为空")
	}
	if strings.TrimSpace(params.To) == "" {
		return nil, errors.New("交易接收地址不能为空")
	}

	caip2 := strings.TrimSpace(params.CAIP2)
	if caip2 == "" {
		caip2 = DefaultCAIP2
	}

	payload := rpcRequest{
		Method: MethodEthSendTransaction,
		CAIP2:  caip2,
		Params: struct {
			Transaction rpcTransaction `json:"transaction"`
		}{
			Transaction: rpcTransaction{
				To:    params.To,
				Value: params.Value,
				Data:  params.Data,
			},
		},
	}

	var decoded rpcResponse
	if err := w.core.do(ctx, http.MethodPost, "/wallets/"+url.PathEscape(walletID)+"/rpc", payload, &decoded); err != nil {
		return nil, err
	}
	return &TransactionResult{
		Hash:   decoded.Data.Hash,
		CAIP2:  decoded.Data.CAIP2,
		Method: string(decoded.Method),
	}, nil
}

// SignMessage 让远端使用钱包私钥对消息做 personal_sign 签名。
func (w *WalletClient) SignMessage(ctx context.Context, walletID, message string) (*SignatureResult, error) {
	walletID = strings.TrimSpace(walletID)
	if walletID == "" {
		return nil, errors.New("钱包 ID 不能为空")
	}
	if message == "" {
		return nil, errors.New("待签名消息不能为空")
	}

	payload := rpcRequest{
		Method: MethodPersonalSign,
		Params: struct {
			Message  string `json:"message"`
			Encoding string `json:"encoding"`
		}{Message: message, Encoding: "utf-8"},
	}

	var decoded rpcResponse
	if err := w.core.do(ctx, http.MethodPost, "/wallets/"+url.PathEscape(walletID)+"/rpc", payload, &decoded); err != nil {
		return nil, err
	}
	return &SignatureResult{
		Signature: decoded.Data.Signature,
		Encoding:  decoded.Data.Encoding,
	}, nil
}
