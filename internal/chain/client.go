package chain

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultPollInterval = 2 * time.Second

var (
	ErrNoRPCURL          = errors.New("at least one RPC URL is required")
	ErrAllRPCUnavailable = errors.New("all RPC clients are unavailable")
	ErrTransactionFailed = errors.New("transaction reverted")
)

// RPCClient 封装以太坊 RPC 客户端，支持多个 URL 和故障转移
//
// Failover happens when a client is selected, never by replaying an
// operation on another node: every method issues its request exactly once.
type RPCClient struct {
	urls         []string
	clients      []*ethclient.Client
	healthy      []bool
	mu           sync.Mutex
	current      int
	pollInterval time.Duration
	logger       zerolog.Logger
}

type Option func(*RPCClient)

// WithPollInterval sets how often WaitMined asks for a receipt.
func WithPollInterval(d time.Duration) Option {
	return func(c *RPCClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// NewRPCClient 创建新的 RPC 客户端
func NewRPCClient(ctx context.Context, urls []string, logger zerolog.Logger, opts ...Option) (*RPCClient, error) {
	if len(urls) == 0 {
		return nil, ErrNoRPCURL
	}

	c := &RPCClient{
		urls:         urls,
		clients:      make([]*ethclient.Client, len(urls)),
		healthy:      make([]bool, len(urls)),
		pollInterval: defaultPollInterval,
		logger:       logger.With().Str("component", "rpc_client").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	connected := 0
	for i, url := range urls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			c.logger.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			continue
		}
		c.clients[i] = client
		c.healthy[i] = true
		connected++
	}

	if connected == 0 {
		return nil, errors.New("failed to connect to any RPC node")
	}

	return c, nil
}

// Close 关闭所有客户端连接
func (c *RPCClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, client := range c.clients {
		if client != nil {
			client.Close()
			c.clients[i] = nil
		}
	}
}

// CallContext issues a raw JSON-RPC request and decodes the result into result.
func (c *RPCClient) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	client, err := c.getClient(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get RPC client")
	}

	if err := client.Client().CallContext(ctx, result, method, args...); err != nil {
		return c.fail(client, errors.Wrapf(err, "%s failed", method))
	}

	return nil
}

// ChainID 获取链 ID
func (c *RPCClient) ChainID(ctx context.Context) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, c.fail(client, errors.Wrap(err, "failed to get chain ID"))
	}

	return chainID, nil
}

// BlockNumber 获取最新区块号
func (c *RPCClient) BlockNumber(ctx context.Context) (uint64, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get RPC client")
	}

	number, err := client.BlockNumber(ctx)
	if err != nil {
		return 0, c.fail(client, errors.Wrap(err, "failed to get latest block number"))
	}

	return number, nil
}

// HeaderByNumber returns a block header; a nil number selects the latest block.
func (c *RPCClient) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	header, err := client.HeaderByNumber(ctx, number)
	if err != nil {
		return nil, c.fail(client, errors.Wrap(err, "failed to get block header"))
	}

	return header, nil
}

// PendingNonceAt returns the pending nonce for the given address.
func (c *RPCClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get RPC client")
	}

	nonce, err := client.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, c.fail(client, errors.Wrap(err, "failed to get pending nonce"))
	}

	return nonce, nil
}

// SuggestGasTipCap 建议 Gas 小费上限 (EIP-1559)
func (c *RPCClient) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	tipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, c.fail(client, errors.Wrap(err, "failed to suggest gas tip cap"))
	}

	return tipCap, nil
}

// SuggestGasPrice 建议 legacy Gas 价格
func (c *RPCClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	price, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, c.fail(client, errors.Wrap(err, "failed to suggest gas price"))
	}

	return price, nil
}

// EstimateGas 估算 Gas 用量
func (c *RPCClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get RPC client")
	}

	gas, err := client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, c.fail(client, errors.Wrap(err, "failed to estimate gas"))
	}

	return gas, nil
}

// CallContract executes a read-only call at the given block (nil = latest).
func (c *RPCClient) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	out, err := client.CallContract(ctx, msg, blockNumber)
	if err != nil {
		return nil, c.fail(client, errors.Wrap(err, "failed to call contract"))
	}

	return out, nil
}

// SendTransaction 发送已签名的交易
func (c *RPCClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	client, err := c.getClient(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get RPC client")
	}

	if err := client.SendTransaction(ctx, tx); err != nil {
		return c.fail(client, errors.Wrap(err, "failed to send transaction"))
	}

	return nil
}

// TransactionByHash 获取交易; ethereum.NotFound for unknown hashes.
func (c *RPCClient) TransactionByHash(ctx context.Context, txHash common.Hash) (*types.Transaction, bool, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to get RPC client")
	}

	tx, isPending, err := client.TransactionByHash(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, false, err
		}
		return nil, false, c.fail(client, errors.Wrap(err, "failed to get transaction"))
	}

	return tx, isPending, nil
}

// TransactionReceipt 获取交易回执; ethereum.NotFound while the transaction is pending.
func (c *RPCClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	client, err := c.getClient(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get RPC client")
	}

	receipt, err := client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		return nil, c.fail(client, errors.Wrap(err, "failed to get transaction receipt"))
	}

	return receipt, nil
}

// WaitMined blocks until the transaction is included in a block and returns
// its receipt. There is no timeout: the wait ends on ctx cancellation or when
// no RPC node is reachable any more. A receipt with a failed status is
// returned together with ErrTransactionFailed.
func (c *RPCClient) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	logger := c.logger.With().Str("tx_hash", tx.Hash().Hex()).Logger()

	for {
		receipt, err := c.TransactionReceipt(ctx, tx.Hash())
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return receipt, errors.Wrapf(ErrTransactionFailed, "tx %s", tx.Hash().Hex())
			}
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
			logger.Trace().Msg("Transaction not yet mined")
		case errors.Is(err, ErrAllRPCUnavailable):
			return nil, errors.Wrap(err, "stopped waiting for transaction receipt")
		default:
			logger.Debug().Err(err).Msg("Receipt lookup failed, will poll again")
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), "stopped waiting for transaction receipt")
		case <-ticker.C:
		}
	}
}

// fail marks the client unhealthy so the next call re-selects a node.
func (c *RPCClient) fail(client *ethclient.Client, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.clients {
		if c.clients[i] == client {
			c.healthy[i] = false
		}
	}

	return err
}

// getClient 获取当前可用的客户端，如果失败则尝试下一个
func (c *RPCClient) getClient(ctx context.Context) (*ethclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[c.current] != nil && c.healthy[c.current] {
		return c.clients[c.current], nil
	}

	// 尝试从当前索引开始
	for i := 0; i < len(c.clients); i++ {
		idx := (c.current + i) % len(c.clients)

		if c.clients[idx] == nil {
			client, err := ethclient.DialContext(ctx, c.urls[idx])
			if err != nil {
				continue
			}
			c.clients[idx] = client
		}

		// 简单健康检查：尝试获取链 ID
		if _, err := c.clients[idx].ChainID(ctx); err != nil {
			c.logger.Warn().
				Str("url", c.urls[idx]).
				Err(err).
				Msg("RPC client health check failed, trying next node")
			continue
		}

		c.current = idx
		c.healthy[idx] = true
		return c.clients[idx], nil
	}

	return nil, ErrAllRPCUnavailable
}
