package chain_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcHandler func(params json.RawMessage) (interface{}, *rpcError)

// fakeNode is a minimal JSON-RPC endpoint that records every method it serves.
type fakeNode struct {
	mu       sync.Mutex
	handlers map[string]rpcHandler
	calls    []string
	server   *httptest.Server
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()

	node := &fakeNode{
		handlers: map[string]rpcHandler{
			"eth_chainId": func(json.RawMessage) (interface{}, *rpcError) { return "0x34a1", nil },
		},
	}
	node.server = httptest.NewServer(http.HandlerFunc(node.serveHTTP))
	t.Cleanup(node.server.Close)

	return node
}

func (n *fakeNode) URL() string {
	return n.server.URL
}

func (n *fakeNode) handle(method string, h rpcHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers[method] = h
}

func (n *fakeNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := 0
	for _, m := range n.calls {
		if m == method {
			count++
		}
	}
	return count
}

func (n *fakeNode) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, req.Method)
	h, ok := n.handlers[req.Method]
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if !ok {
		resp["error"] = rpcError{Code: -32601, Message: "method not found: " + req.Method}
	} else if result, rpcErr := h(req.Params); rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func receiptJSON(txHash string, status string) map[string]interface{} {
	return map[string]interface{}{
		"type":              "0x2",
		"status":            status,
		"cumulativeGasUsed": "0x5208",
		"gasUsed":           "0x5208",
		"effectiveGasPrice": "0x3b9aca00",
		"logsBloom":         "0x" + strings.Repeat("0", 512),
		"logs":              []interface{}{},
		"transactionHash":   txHash,
		"transactionIndex":  "0x0",
		"blockHash":         "0x" + strings.Repeat("ab", 32),
		"blockNumber":       "0x10",
	}
}
