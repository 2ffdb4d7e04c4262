package token

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"token-scanner/internal/utils"
)

//go:embed abi/erc20.json
var erc20ABIJSON string

// ChainInfo holds chain information
type ChainInfo struct {
	ChainID   int64
	ChainName string
}

// Supported chains mapping (RPC URLs are loaded from the environment when
// creating clients)
var supportedChains = map[string]ChainInfo{
	"1":     {ChainID: 1, ChainName: "Ethereum Mainnet"},
	"8453":  {ChainID: 8453, ChainName: "Base"},
	"42161": {ChainID: 42161, ChainName: "Arbitrum One"},
}

// Metadata holds the on-chain identity of an ERC-20 token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// MetadataClient resolves ERC-20 metadata straight from the chain. Mint
// listings often carry only a contract address; this fills in the rest.
type MetadataClient struct {
	chainID   string
	chainInfo ChainInfo
	client    *ethclient.Client
	abi       abi.ABI
}

// NewMetadataClient creates a metadata client for the specified chain.
func NewMetadataClient(chainID string) (*MetadataClient, error) {
	chainInfo, ok := supportedChains[chainID]
	if !ok {
		return nil, fmt.Errorf("unsupported chain ID: %s. Supported chains: 1 (Ethereum), 8453 (Base), 42161 (Arbitrum One)", chainID)
	}

	rpcURL := utils.GetRPCURLForChain(chainID)
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for chain %s (%s). Please set the appropriate environment variable (ETH_RPC_URL, BASE_RPC_URL, or ARB_RPC_URL)", chainID, chainInfo.ChainName)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s RPC: %w", chainInfo.ChainName, err)
	}

	// Parse ABI (embedded in binary)
	parsedABI, err := abi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI: %w", err)
	}

	return &MetadataClient{
		chainID:   chainID,
		chainInfo: chainInfo,
		client:    client,
		abi:       parsedABI,
	}, nil
}

// GetChainName returns the human-readable chain name
func (c *MetadataClient) GetChainName() string {
	return c.chainInfo.ChainName
}

// Close closes the RPC connection
func (c *MetadataClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Metadata fetches name, symbol, and decimals for the token contract.
// Tokens that store their identity as bytes32 (a handful of early contracts)
// fail the string unpack and surface as an error; callers treat that as
// metadata unavailable.
func (c *MetadataClient) Metadata(ctx context.Context, address string) (*Metadata, error) {
	token := common.HexToAddress(address)

	name, err := c.callString(ctx, token, "name")
	if err != nil {
		return nil, err
	}
	symbol, err := c.callString(ctx, token, "symbol")
	if err != nil {
		return nil, err
	}

	meta := &Metadata{Name: name, Symbol: symbol}

	// decimals is optional in the ERC-20 spec; default to 18 when the call fails.
	unpacked, err := c.callMethod(ctx, token, "decimals")
	if err == nil && len(unpacked) == 1 {
		if d, ok := unpacked[0].(uint8); ok {
			meta.Decimals = d
		}
	} else {
		meta.Decimals = 18
	}

	return meta, nil
}

// callString calls a no-argument method returning a single string.
func (c *MetadataClient) callString(ctx context.Context, token common.Address, methodName string) (string, error) {
	unpacked, err := c.callMethod(ctx, token, methodName)
	if err != nil {
		return "", err
	}
	if len(unpacked) != 1 {
		return "", fmt.Errorf("unexpected number of return values from %s: got %d, expected 1", methodName, len(unpacked))
	}
	value, ok := unpacked[0].(string)
	if !ok {
		return "", fmt.Errorf("failed to extract %s as string", methodName)
	}
	return value, nil
}

// callMethod packs a no-argument call, executes it against the token
// contract, and unpacks the raw return values.
func (c *MetadataClient) callMethod(ctx context.Context, token common.Address, methodName string) ([]interface{}, error) {
	method, exists := c.abi.Methods[methodName]
	if !exists {
		return nil, fmt.Errorf("%s method not found in ABI", methodName)
	}

	packedParams, err := method.Inputs.Pack()
	if err != nil {
		return nil, fmt.Errorf("failed to pack input: %w", err)
	}

	// Prepend the method selector (first 4 bytes of keccak256 hash of function signature)
	input := append(method.ID, packedParams...)

	msg := ethereum.CallMsg{
		To:   &token,
		Data: input,
	}

	result, err := c.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call contract: %w", err)
	}

	unpacked, err := method.Outputs.UnpackValues(result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack output: %w", err)
	}
	return unpacked, nil
}

// ValidateChainID checks if a chain ID is supported
func ValidateChainID(chainID string) error {
	_, ok := supportedChains[chainID]
	if !ok {
		return fmt.Errorf("unsupported chain ID: %s. Supported chains: 1 (Ethereum Mainnet), 8453 (Base), 42161 (Arbitrum One)", chainID)
	}
	return nil
}
