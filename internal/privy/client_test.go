package privy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	xerrors "github.com/Team-Watson-Denver/plugin-privy/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		AppID:     "app-id",
		AppSecret: "app-secret",
		BaseURL:   server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, server
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(Config{AppSecret: "secret"}); err == nil {
		t.Fatal("expected error for missing app id")
	}
	if _, err := NewClient(Config{AppID: "id", AppSecret: "  "}); err == nil {
		t.Fatal("expected error for blank app secret")
	}
}

func TestCreatePolicyTemplate(t *testing.T) {
	var captured createPolicyRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/policies" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "app-id" || pass != "app-secret" {
			t.Errorf("missing basic auth: %q %q", user, pass)
		}
		if got := r.Header.Get("privy-app-id"); got != "app-id" {
			t.Errorf("unexpected privy-app-id header: %q", got)
		}
		if r.Header.Get("privy-idempotency-key") == "" {
			t.Error("expected idempotency key on POST")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Policy{
			ID:            "pol-9",
			Name:          captured.Name,
			ChainType:     captured.ChainType,
			MethodRules:   captured.MethodRules,
			DefaultAction: captured.DefaultAction,
		})
	})

	policy, err := client.Policies().Create(context.Background(), "Trading policy")
	if err != nil {
		t.Fatalf("create policy: %v", err)
	}

	if captured.ChainType != ChainEthereum {
		t.Fatalf("unexpected chain type: %q", captured.ChainType)
	}
	if captured.DefaultAction != ActionDeny {
		t.Fatalf("unexpected default action: %q", captured.DefaultAction)
	}
	if len(captured.MethodRules) != 1 {
		t.Fatalf("expected exactly one method rule, got %d", len(captured.MethodRules))
	}
	if captured.MethodRules[0].Method != MethodEthSendTransaction {
		t.Fatalf("unexpected method: %q", captured.MethodRules[0].Method)
	}
	if captured.MethodRules[0].Rules == nil || len(captured.MethodRules[0].Rules) != 0 {
		t.Fatalf("expected empty rule list, got %+v", captured.MethodRules[0].Rules)
	}
	if policy.ID != "pol-9" {
		t.Fatalf("unexpected policy id: %q", policy.ID)
	}
}

func TestGetPolicy(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/policies/pol-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("privy-idempotency-key") != "" {
			t.Error("GET must not carry an idempotency key")
		}
		_ = json.NewEncoder(w).Encode(samplePolicy())
	})

	policy, err := client.Policies().Get(context.Background(), "pol-1")
	if err != nil {
		t.Fatalf("get policy: %v", err)
	}
	if policy.Name != "Trading policy" || len(policy.MethodRules) != 1 {
		t.Fatalf("unexpected policy: %+v", policy)
	}
}

func TestUpdatePolicyPatch(t *testing.T) {
	var captured PolicyUpdate
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/policies/pol-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("privy-idempotency-key") == "" {
			t.Error("expected idempotency key on PATCH")
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Policy{ID: "pol-1", Name: captured.Name, MethodRules: captured.MethodRules})
	})

	update := Allowlist(samplePolicy(), "USDC", "0xBBB")
	policy, err := client.Policies().Update(context.Background(), "pol-1", update)
	if err != nil {
		t.Fatalf("update policy: %v", err)
	}
	if len(captured.MethodRules[0].Rules) != 2 {
		t.Fatalf("expected edited rules in PATCH body, got %+v", captured.MethodRules)
	}
	if len(policy.MethodRules[0].Rules) != 2 {
		t.Fatalf("unexpected response policy: %+v", policy)
	}
}

func TestRemoteErrorMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Transaction denied by policy"}`))
	})

	_, err := client.Policies().Get(context.Background(), "pol-1")
	if err == nil {
		t.Fatal("expected remote error")
	}
	apiErr, ok := xerrors.From(err)
	if !ok {
		t.Fatalf("expected unified error, got %T", err)
	}
	if apiErr.Code() != xerrors.CodeRemoteAPIFailure {
		t.Fatalf("unexpected code: %q", apiErr.Code())
	}
	if apiErr.Message() != "Transaction denied by policy" {
		t.Fatalf("unexpected message: %q", apiErr.Message())
	}
	if apiErr.Metadata()["status"] != "403" {
		t.Fatalf("unexpected metadata: %+v", apiErr.Metadata())
	}
}

func TestRemoteErrorFallsBackToStatusText(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>oops</html>"))
	})

	_, err := client.Policies().Get(context.Background(), "pol-1")
	if err == nil {
		t.Fatal("expected remote error")
	}
	apiErr, ok := xerrors.From(err)
	if !ok {
		t.Fatalf("expected unified error, got %T", err)
	}
	if apiErr.Message() != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("unexpected message: %q", apiErr.Message())
	}
}

func TestAuthorizationSignatureHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("privy-authorization-signature"); got != "sig-123" {
			t.Errorf("unexpected signature header: %q", got)
		}
		_ = json.NewEncoder(w).Encode(Policy{ID: "pol-1"})
	}))
	defer server.Close()

	client, err := NewClient(Config{
		AppID:                  "app-id",
		AppSecret:              "app-secret",
		AuthorizationSignature: "sig-123",
		BaseURL:                server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Policies().Get(context.Background(), "pol-1"); err != nil {
		t.Fatalf("get policy: %v", err)
	}
}

func TestWalletLifecycle(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/wallets":
			var req createWalletRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode create wallet: %v", err)
			}
			if req.ChainType != ChainEthereum {
				t.Errorf("unexpected chain type: %q", req.ChainType)
			}
			_ = json.NewEncoder(w).Encode(Wallet{ID: "wal-1", Address: "0xabc", ChainType: req.ChainType, PolicyIDs: req.PolicyIDs})
		case r.Method == http.MethodPatch && r.URL.Path == "/wallets/wal-1":
			var req updateWalletRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode update wallet: %v", err)
			}
			_ = json.NewEncoder(w).Encode(Wallet{ID: "wal-1", Address: "0xabc", PolicyIDs: req.PolicyIDs})
		case r.Method == http.MethodGet && r.URL.Path == "/wallets":
			_ = json.NewEncoder(w).Encode(listWalletsResponse{Data: []Wallet{{ID: "wal-1"}, {ID: "wal-2"}}})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	wallets := client.Wallets()
	ctx := context.Background()

	created, err := wallets.Create(ctx, "", []string{"pol-1"})
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if created.ID != "wal-1" || len(created.PolicyIDs) != 1 {
		t.Fatalf("unexpected wallet: %+v", created)
	}

	updated, err := wallets.Update(ctx, "wal-1", []string{"pol-2", "pol-3"})
	if err != nil {
		t.Fatalf("update wallet: %v", err)
	}
	if len(updated.PolicyIDs) != 2 {
		t.Fatalf("unexpected policy ids: %+v", updated.PolicyIDs)
	}

	listed, err := wallets.List(ctx)
	if err != nil {
		t.Fatalf("list wallets: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 wallets, got %d", len(listed))
	}
}

func TestSendTransactionRPC(t *testing.T) {
	var captured map[string]any
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/wallets/wal-1/rpc" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode rpc body: %v", err)
		}
		_, _ = w.Write([]byte(`{"method":"eth_sendTransaction","data":{"hash":"0xhash","caip2":"eip155:10143"}}`))
	})

	result, err := client.Wallets().SendTransaction(context.Background(), SendTransactionParams{
		WalletID: "wal-1",
		To:       "0xBBB",
		Value:    "1000000000000000000",
		CAIP2:    "eip155:10143",
	})
	if err != nil {
		t.Fatalf("send transaction: %v", err)
	}
	if result.Hash != "0xhash" || result.CAIP2 != "eip155:10143" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if captured["method"] != "eth_sendTransaction" || captured["caip2"] != "eip155:10143" {
		t.Fatalf("unexpected rpc envelope: %+v", captured)
	}
	params, _ := captured["params"].(map[string]any)
	tx, _ := params["transaction"].(map[string]any)
	if tx["to"] != "0xBBB" || tx["value"] != "1000000000000000000" {
		t.Fatalf("unexpected transaction payload: %+v", tx)
	}
}

func TestSendTransactionDefaultsCAIP2(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["caip2"] != DefaultCAIP2 {
			t.Errorf("expected default caip2, got %v", body["caip2"])
		}
		_, _ = w.Write([]byte(`{"method":"eth_sendTransaction","data":{"hash":"0xhash"}}`))
	})

	if _, err := client.Wallets().SendTransaction(context.Background(), SendTransactionParams{
		WalletID: "wal-1",
		To:       "0xBBB",
		Value:    "0x0",
	}); err != nil {
		t.Fatalf("send transaction: %v", err)
	}
}

func TestSignMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["method"] != "personal_sign" {
			t.Errorf("unexpected method: %v", body["method"])
		}
		params, _ := body["params"].(map[string]any)
		if params["message"] != "hello" {
			t.Errorf("unexpected message: %v", params["message"])
		}
		_, _ = w.Write([]byte(`{"method":"personal_sign","data":{"signature":"0xsig","encoding":"hex"}}`))
	})

	result, err := client.Wallets().SignMessage(context.Background(), "wal-1", "hello")
	if err != nil {
		t.Fatalf("sign message: %v", err)
	}
	if result.Signature != "0xsig" || result.Encoding != "hex" {
		t.Fatalf("unexpected signature result: %+v", result)
	}
}

func TestClientInputValidation(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected")
	})
	_ = server
	ctx := context.Background()

	if _, err := client.Policies().Get(ctx, "  "); err == nil || !strings.Contains(err.Error(), "策略 ID") {
		t.Fatalf("expected policy id validation error, got %v", err)
	}
	if _, err := client.Policies().Create(ctx, ""); err == nil {
		t.Fatal("expected policy name validation error")
	}
	if _, err := client.Wallets().Update(ctx, "", nil); err == nil {
		t.Fatal("expected wallet id validation error")
	}
	if _, err := client.Wallets().SendTransaction(ctx, SendTransactionParams{WalletID: "wal-1"}); err == nil {
		t.Fatal("expected recipient validation error")
	}
	if _, err := client.Wallets().SignMessage(ctx, "wal-1", ""); err == nil {
		t.Fatal("expected message validation error")
	}
}
