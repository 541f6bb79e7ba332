package monad

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Config describes how to reach a Monad RPC endpoint.
type Config struct {
	RPCURL string
	// ChainID is the chain id the caller expects the endpoint to serve.
	// Zero disables the cross check.
	ChainID uint64
}

// Snapshot carries lightweight network metadata attached to action results.
type Snapshot struct {
	ChainID     string `json:"chain_id"`
	BlockNumber string `json:"block_number"`
}

// Client is a thin wrapper over an EVM compatible Monad node.
type Client struct {
	rpcClient *gethrpc.Client
	eth       *ethclient.Client
	expected  uint64
}

// Dial connects to the configured RPC endpoint and returns a ready client.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	rpcURL := strings.TrimSpace(cfg.RPCURL)
	if rpcURL == "" {
		return nil, errors.New("未配置 Monad RPC 地址")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接 Monad 节点失败: %w", err)
	}

	return &Client{
		rpcClient: rpcClient,
		eth:       ethclient.NewClient(rpcClient),
		expected:  cfg.ChainID,
	}, nil
}

// Close releases the underlying network connection.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
	if c.rpcClient != nil {
		c.rpcClient.Close()
		c.rpcClient = nil
	}
}

// FetchSnapshot gathers the chain id and latest block height.
func (c *Client) FetchSnapshot(ctx context.Context) (Snapshot, error) {
	if c == nil || c.eth == nil {
		return Snapshot{}, errors.New("未初始化的 Monad 客户端")
	}

	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("获取链 ID 失败: %w", err)
	}
	blockNumber, err := c.eth.BlockNumber(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("获取最新区块高度失败: %w", err)
	}

	return Snapshot{
		ChainID:     toHexBig(chainID),
		BlockNumber: fmt.Sprintf("0x%x", blockNumber),
	}, nil
}

// VerifyChainID checks the endpoint against the configured chain id.
func (c *Client) VerifyChainID(ctx context.Context) error {
	if c == nil || c.eth == nil {
		return errors.New("未初始化的 Monad 客户端")
	}
	if c.expected == 0 {
		return nil
	}
	chainID, err := c.eth.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("获取链 ID 失败: %w", err)
	}
	if chainID.Cmp(new(big.Int).SetUint64(c.expected)) != 0 {
		return fmt.Errorf("Monad 节点链 ID 不匹配: 期望 %d, 实际 %s", c.expected, chainID)
	}
	return nil
}

// CAIP2 returns the CAIP-2 identifier for the configured chain id.
// An empty string means the caller should fall back to its own default.
func (c *Client) CAIP2() string {
	if c == nil || c.expected == 0 {
		return ""
	}
	return fmt.Sprintf("eip155:%d", c.expected)
}

func toHexBig(n *big.Int) string {
	if n == nil {
		return "0x0"
	}
	return "0x" + n.Text(16)
}
