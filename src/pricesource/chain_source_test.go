package pricesource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/helpers"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"
)

func testConfig(endpoint string) *models.MConfig {
	return &models.MConfig{
		RPC: models.MRPCConfig{
			Endpoint:       endpoint,
			PriceFeed:      "0x27e26f1D77db85e8eF9BC0cfBbbD65B9aFB0e5D0",
			Token:          "0x49D5c2BdFfac6CE2BFdB6640F4F80f226bc10bAB",
			RequestTimeout: 5,
		},
	}
}

// rawFor builds the on-chain fixed-point integer for a display price
// with three decimals of headroom: price * 1000 * 10^27.
func rawFor(t *testing.T, milliPrice int64) *big.Int {
	t.Helper()
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(27), nil)
	return new(big.Int).Mul(big.NewInt(milliPrice), scale)
}

func TestScaleRawPrice(t *testing.T) {
	cases := []struct {
		raw  *big.Int
		want string
	}{
		// 32005000 * 10^27 -> 32005
		{rawFor(t, 32005000), "32005"},
		// 3200500 * 10^27 -> 3200.5
		{rawFor(t, 3200500), "3200.5"},
		// quotient truncates before the /1000 stage
		{big.NewInt(999), "0"},
	}

	for _, c := range cases {
		got := ScaleRawPrice(c.raw)
		if got.String() != c.want {
			t.Errorf("ScaleRawPrice(%s) = %s, want %s", c.raw, got, c.want)
		}
	}
}

func TestScaleRawPrice_ThirtyTwoDigitValue(t *testing.T) {
	raw, ok := new(big.Int).SetString("32005000000000000000000000000000", 10)
	if !ok {
		t.Fatal("bad literal")
	}
	// 32005 * 10^27 / 10^27 / 1000
	if got := ScaleRawPrice(raw); got.String() != "32.005" {
		t.Errorf("got %s, want 32.005", got)
	}
}

func TestEncodeGetPriceCall(t *testing.T) {
	data, err := encodeGetPriceCall("0x49D5c2BdFfac6CE2BFdB6640F4F80f226bc10bAB")
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	// selector + three 32-byte words
	if len(data) != 2+(4+3*32)*2 {
		t.Fatalf("call data length = %d", len(data))
	}
	if !strings.HasPrefix(data, "0x") {
		t.Fatalf("call data not 0x-prefixed: %s", data)
	}

	// address word, left-padded
	addrWord := data[2+8 : 2+8+64]
	if !strings.HasSuffix(strings.ToLower(addrWord), "49d5c2bdffac6ce2bfdb6640f4f80f226bc10bab") {
		t.Errorf("address word = %s", addrWord)
	}
	if !strings.HasPrefix(addrWord, "000000000000000000000000") {
		t.Errorf("address word not left-padded: %s", addrWord)
	}

	// maximise = false, includeAmmPrice = true
	boolWords := data[2+8+64:]
	if boolWords[:64] != strings.Repeat("0", 64) {
		t.Errorf("maximise word = %s", boolWords[:64])
	}
	if boolWords[64:] != strings.Repeat("0", 63)+"1" {
		t.Errorf("includeAmmPrice word = %s", boolWords[64:])
	}
}

func TestEncodeGetPriceCall_RejectsBadAddress(t *testing.T) {
	if _, err := encodeGetPriceCall("0x1234"); err == nil {
		t.Error("short address should be rejected")
	}
	if _, err := encodeGetPriceCall("not-hex"); err == nil {
		t.Error("non-hex address should be rejected")
	}
}

func TestFetchPrice_DecodesCallResult(t *testing.T) {
	raw := rawFor(t, 3200500)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Method != "eth_call" {
			t.Errorf("method = %s, want eth_call", req.Method)
		}
		fmt.Fprintf(w, `{"jsonrpc":"2.0","id":%d,"result":"0x%064x"}`, req.ID, raw)
	}))
	defer srv.Close()

	source, err := NewChainPriceSource(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewChainPriceSource: %v", err)
	}

	price, err := source.FetchPrice(context.Background())
	if err != nil {
		t.Fatalf("FetchPrice: %v", err)
	}
	if price.String() != "3200.5" {
		t.Errorf("price = %s, want 3200.5", price)
	}
}

func TestFetchPrice_RPCErrorIsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"execution reverted"}}`)
	}))
	defer srv.Close()

	source, err := NewChainPriceSource(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewChainPriceSource: %v", err)
	}

	_, err = source.FetchPrice(context.Background())
	var unavailable *helpers.SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("error = %v, want SourceUnavailableError", err)
	}
}

func TestFetchPrice_BadStatusIsSourceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source, err := NewChainPriceSource(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("NewChainPriceSource: %v", err)
	}

	_, err = source.FetchPrice(context.Background())
	var unavailable *helpers.SourceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Errorf("error = %v, want SourceUnavailableError", err)
	}
}

func TestDecodePrice_Malformed(t *testing.T) {
	for _, result := range []string{"", "0x", "0xzz"} {
		if _, err := decodePrice(result); err == nil {
			t.Errorf("decodePrice(%q) should fail", result)
		}
	}
}
