package wallet

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/synto-ai/synto/chain"
	"github.com/synto-ai/synto/schema"
)

const testOwner = "9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM"

func sendCall(id string) schema.ToolCall {
	return schema.ToolCall{
		ID:   id,
		Name: "send",
		Args: []byte(`{"to":"7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr","amount":1.5}`),
	}
}

func copyCall(id string) schema.ToolCall {
	return schema.ToolCall{
		ID:   id,
		Name: "copyPortfolio",
		Args: []byte(`{"username":"toukoum","amount":0.2}`),
	}
}

func swapCall(id string) schema.ToolCall {
	return schema.ToolCall{
		ID:   id,
		Name: "swap",
		Args: []byte(`{"amount":2,"input":"SOL","output":"USDC"}`),
	}
}

func newTestManager(opts ...Option) (*Manager, *chain.MockSubmitter) {
	submitter := chain.NewMockSubmitter()
	return NewManager(chain.NewMockQuoter(), submitter, opts...), submitter
}

func TestDeferArmsConfirmation(t *testing.T) {
	manager, _ := newTestManager()

	confirmation, err := manager.Defer(sendCall("c1"), testOwner)
	if err != nil {
		t.Fatalf("defer failed: %v", err)
	}
	if confirmation.State != StateWaiting {
		t.Errorf("expected waiting state, got %s", confirmation.State)
	}
	if len(manager.Pending()) != 1 {
		t.Error("expected one pending confirmation")
	}
}

func TestDeferWhileUnresolved(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Defer(sendCall("c1"), testOwner); err != nil {
		t.Fatalf("defer failed: %v", err)
	}
	if _, err := manager.Defer(sendCall("c1"), testOwner); !errors.Is(err, schema.ErrToolInProgress) {
		t.Fatalf("expected ErrToolInProgress, got %v", err)
	}
}

func TestConfirmSendSuccess(t *testing.T) {
	manager, submitter := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)

	confirmation, err := manager.Confirm(context.Background(), "c1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmation.State != StateSuccess {
		t.Fatalf("expected success, got %s", confirmation.State)
	}

	result := confirmation.Result
	if !result.Success {
		t.Fatalf("expected success result, got %q", result.Error)
	}
	if result.TxHash == "" {
		t.Error("expected transaction hash")
	}
	data := result.Data.(map[string]interface{})
	if data["sender"] != testOwner {
		t.Errorf("unexpected sender: %v", data["sender"])
	}
	if data["recipient"] != "7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr" {
		t.Errorf("unexpected recipient: %v", data["recipient"])
	}
	if data["amount"] != 1.5 {
		t.Errorf("unexpected amount: %v", data["amount"])
	}

	submitted := submitter.Submitted()
	if len(submitted) != 1 || submitted[0].Kind != "transfer" {
		t.Fatalf("expected one transfer submission, got %+v", submitted)
	}
}

func TestConfirmCaseVariantToolName(t *testing.T) {
	manager, submitter := newTestManager()
	call := sendCall("c1")
	call.Name = "SEND"
	if _, err := manager.Defer(call, testOwner); err != nil {
		t.Fatalf("defer failed: %v", err)
	}

	confirmation, err := manager.Confirm(context.Background(), "c1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmation.State != StateSuccess {
		t.Fatalf("expected success, got %s", confirmation.State)
	}
	if !strings.HasPrefix(confirmation.Result.Message, "Sent 1.5 SOL to") {
		t.Errorf("unexpected message: %q", confirmation.Result.Message)
	}

	submitted := submitter.Submitted()
	if len(submitted) != 1 {
		t.Fatalf("expected one submission, got %d", len(submitted))
	}
	tx := submitted[0]
	if tx.Kind != "transfer" || tx.To != "7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr" || tx.Amount != 1.5 {
		t.Errorf("case-variant call built wrong transaction: %+v", tx)
	}
}

func TestConfirmCopyPortfolio(t *testing.T) {
	manager, submitter := newTestManager()
	manager.Defer(copyCall("c1"), testOwner)

	confirmation, err := manager.Confirm(context.Background(), "c1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmation.State != StateSuccess {
		t.Fatalf("expected success, got %s: %+v", confirmation.State, confirmation.Result)
	}

	data := confirmation.Result.Data.(map[string]interface{})
	if data["username"] != "toukoum" {
		t.Errorf("unexpected username: %v", data["username"])
	}
	portfolio := data["portfolio"].(map[string]interface{})
	assets := portfolio["assets"].([]map[string]interface{})
	if len(assets) != 2 {
		t.Fatalf("expected two allocation legs, got %d", len(assets))
	}
	legs := portfolio["swapResults"].([]map[string]interface{})
	for _, leg := range legs {
		if leg["amount"] != 0.1 {
			t.Errorf("expected even 0.1 split, got %v", leg["amount"])
		}
		if leg["from"] != "USD" {
			t.Errorf("expected USD base currency, got %v", leg["from"])
		}
	}

	submitted := submitter.Submitted()
	if len(submitted) != 1 || submitted[0].Kind != "copyportfolio" {
		t.Fatalf("expected one copyportfolio submission, got %+v", submitted)
	}
	if submitted[0].Amount != 0.2 || submitted[0].Symbol != "USD" {
		t.Errorf("unexpected submission: %+v", submitted[0])
	}
}

func TestConfirmSwapSuccess(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(swapCall("c1"), testOwner)

	confirmation, err := manager.Confirm(context.Background(), "c1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmation.State != StateSuccess {
		t.Fatalf("expected success, got %s: %+v", confirmation.State, confirmation.Result)
	}

	data := confirmation.Result.Data.(map[string]interface{})
	if data["fromToken"] != "SOL" || data["toToken"] != "USDC" {
		t.Errorf("unexpected pair: %v -> %v", data["fromToken"], data["toToken"])
	}
	if data["fromAmount"] != 2.0 {
		t.Errorf("unexpected fromAmount: %v", data["fromAmount"])
	}
	if data["toAmount"] != 300.0 {
		t.Errorf("unexpected toAmount: %v", data["toAmount"])
	}
}

func TestConfirmSubmissionFailure(t *testing.T) {
	manager, submitter := newTestManager()
	submitter.Fail = true
	manager.Defer(sendCall("c1"), testOwner)

	confirmation, err := manager.Confirm(context.Background(), "c1")
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmation.State != StateFailed {
		t.Fatalf("expected failed state, got %s", confirmation.State)
	}
	if confirmation.Result.Success {
		t.Fatal("expected failure result")
	}
}

func TestRejectCancels(t *testing.T) {
	manager, submitter := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)

	confirmation, err := manager.Reject("c1")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if confirmation.State != StateFailed {
		t.Fatalf("expected failed state, got %s", confirmation.State)
	}
	if confirmation.Result.Error != "Transaction cancelled by user" {
		t.Errorf("unexpected cancellation text: %q", confirmation.Result.Error)
	}
	if len(submitter.Submitted()) != 0 {
		t.Error("rejected transaction must not be submitted")
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)
	manager.Reject("c1")

	if _, err := manager.Confirm(context.Background(), "c1"); !errors.Is(err, schema.ErrConfirmationResolved) {
		t.Fatalf("expected ErrConfirmationResolved, got %v", err)
	}
	if _, err := manager.Reject("c1"); !errors.Is(err, schema.ErrConfirmationResolved) {
		t.Fatalf("expected ErrConfirmationResolved, got %v", err)
	}

	// State is unchanged after the rejected transitions.
	confirmation, err := manager.Get("c1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if confirmation.State != StateFailed {
		t.Errorf("state drifted to %s", confirmation.State)
	}
}

func TestRetryUsesFreshConfirmation(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)
	manager.Reject("c1")

	// The same action retried arrives under a new call ID and starts a
	// clean lifecycle.
	confirmation, err := manager.Defer(sendCall("c2"), testOwner)
	if err != nil {
		t.Fatalf("second defer failed: %v", err)
	}
	if confirmation.State != StateWaiting {
		t.Errorf("expected waiting state, got %s", confirmation.State)
	}
	if _, err := manager.Confirm(context.Background(), "c2"); err != nil {
		t.Fatalf("confirm of retried action failed: %v", err)
	}
}

func TestUnknownConfirmation(t *testing.T) {
	manager, _ := newTestManager()
	if _, err := manager.Confirm(context.Background(), "missing"); !errors.Is(err, schema.ErrConfirmationNotFound) {
		t.Fatalf("expected ErrConfirmationNotFound, got %v", err)
	}
	if _, err := manager.Reject("missing"); !errors.Is(err, schema.ErrConfirmationNotFound) {
		t.Fatalf("expected ErrConfirmationNotFound, got %v", err)
	}
}

func TestAwaitBlocksUntilDecision(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)

	done := make(chan string, 1)
	go func() {
		result, err := manager.Await(context.Background(), "c1")
		if err != nil {
			done <- "error: " + err.Error()
			return
		}
		done <- result
	}()

	time.Sleep(10 * time.Millisecond)
	if _, err := manager.Confirm(context.Background(), "c1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	select {
	case result := <-done:
		if !schema.ParseResult(result).Success {
			t.Fatalf("expected success result, got %s", result)
		}
	case <-time.After(time.Second):
		t.Fatal("await did not wake after the decision")
	}
}

func TestAwaitAlreadyResolved(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)
	manager.Reject("c1")

	result, err := manager.Await(context.Background(), "c1")
	if err != nil {
		t.Fatalf("await failed: %v", err)
	}
	if schema.ParseResult(result).Success {
		t.Fatal("expected cancellation result")
	}
}

func TestAwaitContextCancelKeepsConfirmationArmed(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := manager.Await(ctx, "c1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	confirmation, err := manager.Get("c1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if confirmation.State != StateWaiting {
		t.Errorf("confirmation should stay armed, got %s", confirmation.State)
	}
	// The decision can still land afterwards.
	if _, err := manager.Confirm(context.Background(), "c1"); err != nil {
		t.Fatalf("late confirm failed: %v", err)
	}
}

func TestAwaitExpiry(t *testing.T) {
	manager, _ := newTestManager(WithExpiry(20 * time.Millisecond))
	manager.Defer(sendCall("c1"), testOwner)

	if _, err := manager.Await(context.Background(), "c1"); !errors.Is(err, schema.ErrConfirmationExpired) {
		t.Fatalf("expected ErrConfirmationExpired, got %v", err)
	}
	// The expired cycle is over and the entry is gone.
	if _, err := manager.Get("c1"); !errors.Is(err, schema.ErrConfirmationNotFound) {
		t.Fatalf("expected ErrConfirmationNotFound after expiry, got %v", err)
	}
}

func TestAwaitDestroysResolvedConfirmation(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)
	if _, err := manager.Confirm(context.Background(), "c1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	result, err := manager.Await(context.Background(), "c1")
	if err != nil {
		t.Fatalf("await failed: %v", err)
	}
	if !schema.ParseResult(result).Success {
		t.Fatalf("expected success result, got %s", result)
	}

	if _, err := manager.Get("c1"); !errors.Is(err, schema.ErrConfirmationNotFound) {
		t.Fatalf("resolved confirmation should be destroyed, got %v", err)
	}
	// The ID is free for a fresh cycle.
	if _, err := manager.Defer(sendCall("c1"), testOwner); err != nil {
		t.Fatalf("re-defer after completed cycle failed: %v", err)
	}
}

func TestExpiryLosesToDecision(t *testing.T) {
	manager, _ := newTestManager()
	manager.Defer(sendCall("c1"), testOwner)
	if _, err := manager.Confirm(context.Background(), "c1"); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	if manager.expire("c1") {
		t.Fatal("expiry must not override a resolved confirmation")
	}
	result, err := manager.take("c1")
	if err != nil {
		t.Fatalf("take failed: %v", err)
	}
	if !schema.ParseResult(result).Success {
		t.Fatalf("decision result was lost: %s", result)
	}
}

func TestSummary(t *testing.T) {
	manager, _ := newTestManager()
	confirmation, _ := manager.Defer(sendCall("c1"), testOwner)
	if confirmation.Summary() != "1.5 SOL to 7wjzVzAzWCL4aJwBYyaeKDb2bfRg4gCCWNYJpSWVaKfr" {
		t.Errorf("unexpected summary: %q", confirmation.Summary())
	}

	swap, _ := manager.Defer(swapCall("c2"), testOwner)
	if swap.Summary() != "2 SOL for USDC" {
		t.Errorf("unexpected swap summary: %q", swap.Summary())
	}

	copied, _ := manager.Defer(copyCall("c3"), testOwner)
	if copied.Summary() != "0.2 USD copying @toukoum" {
		t.Errorf("unexpected copy summary: %q", copied.Summary())
	}
}
