package pricesource

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/helpers"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/sha3"
)

// -----------------------------------------------------------------------------
// Scaling constants
// -----------------------------------------------------------------------------

// VaultPriceFeed.getPriceV1 returns a fixed-point integer. Display units
// are reached in two stages: an integer quotient by 10^27, then a
// division by 1000. Both stages belong to the source's representation
// and are not adjustable.
var (
	priceScaleFactor = new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)
	displayDivisor   = decimal.NewFromInt(1000)
)

const getPriceSignature = "getPriceV1(address,bool,bool)"

// -----------------------------------------------------------------------------
// ChainPriceSource
// -----------------------------------------------------------------------------

// ChainPriceSource reads the token price from the GMX VaultPriceFeed
// contract via a JSON-RPC eth_call against the Avalanche C-Chain.
type ChainPriceSource struct {
	Config     *models.MConfig
	Logger     *logger.Logger
	HttpClient *http.Client

	callData string
	reqID    atomic.Uint64
}

// -----------------------------------------------------------------------------

func NewChainPriceSource(cfg *models.MConfig) (*ChainPriceSource, error) {
	callData, err := encodeGetPriceCall(cfg.RPC.Token)
	if err != nil {
		return nil, helpers.NewConfigurationError("invalid price feed call", err)
	}

	return &ChainPriceSource{
		Config: cfg,
		Logger: logger.NewLogger("ChainPriceSource"),
		HttpClient: &http.Client{
			Timeout: time.Duration(cfg.RPC.RequestTimeout) * time.Second,
		},
		callData: callData,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *ChainPriceSource) Name() string {
	return "gmx-vault-price-feed"
}

// -----------------------------------------------------------------------------

// encodeGetPriceCall builds the eth_call data for
// getPriceV1(token, maximise=false, includeAmmPrice=true).
func encodeGetPriceCall(token string) (string, error) {
	tokenBytes, err := hex.DecodeString(strings.TrimPrefix(token, "0x"))
	if err != nil {
		return "", fmt.Errorf("token address %q is not hex: %w", token, err)
	}
	if len(tokenBytes) != 20 {
		return "", fmt.Errorf("token address %q is not 20 bytes", token)
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(getPriceSignature))
	selector := h.Sum(nil)[:4]

	buf := make([]byte, 0, 4+3*32)
	buf = append(buf, selector...)

	// address argument, left-padded to a 32-byte word
	word := make([]byte, 32)
	copy(word[12:], tokenBytes)
	buf = append(buf, word...)

	// maximise = false
	buf = append(buf, make([]byte, 32)...)

	// includeAmmPrice = true
	word = make([]byte, 32)
	word[31] = 1
	buf = append(buf, word...)

	return "0x" + hex.EncodeToString(buf), nil
}

// -----------------------------------------------------------------------------
// JSON-RPC envelope
// -----------------------------------------------------------------------------

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	Result string `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// -----------------------------------------------------------------------------

// FetchPrice issues one eth_call and converts the result to display
// units. Any transport, status, RPC or parse failure comes back as a
// SourceUnavailableError; there is no retry here.
func (s *ChainPriceSource) FetchPrice(ctx context.Context) (decimal.Decimal, error) {
	call := map[string]string{
		"to":   s.Config.RPC.PriceFeed,
		"data": s.callData,
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      s.reqID.Add(1),
		Method:  "eth_call",
		Params:  []interface{}{call, "latest"},
	})
	if err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("encode rpc request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Config.RPC.Endpoint, bytes.NewReader(body))
	if err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("build rpc request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.HttpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("rpc request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Decimal{}, helpers.NewSourceUnavailable(
			"rpc request failed", fmt.Errorf("bad status: %d", resp.StatusCode))
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("read rpc response", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(respBytes, &rpcResp); err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("parse rpc response", err)
	}
	if rpcResp.Error != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable(
			"rpc error", fmt.Errorf("code %d: %s", rpcResp.Error.Code, rpcResp.Error.Message))
	}

	price, err := decodePrice(rpcResp.Result)
	if err != nil {
		return decimal.Decimal{}, helpers.NewSourceUnavailable("decode call result", err)
	}

	s.Logger.Info("ETH Exchange Price: %s", price)
	return price, nil
}

// -----------------------------------------------------------------------------

// decodePrice converts a hex-encoded call result into display units.
func decodePrice(result string) (decimal.Decimal, error) {
	hexStr := strings.TrimPrefix(result, "0x")
	if hexStr == "" {
		return decimal.Decimal{}, fmt.Errorf("empty call result")
	}

	raw, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("non-numeric call result %q", result)
	}

	return ScaleRawPrice(raw), nil
}

// -----------------------------------------------------------------------------

// ScaleRawPrice applies the contract's fixed-point layout.
func ScaleRawPrice(raw *big.Int) decimal.Decimal {
	quotient := new(big.Int).Quo(raw, priceScaleFactor)
	return decimal.NewFromBigInt(quotient, 0).Div(displayDivisor)
}
