package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	contractx "github.com/tanpawarit/buildershub-receptionist/agent/contract"
	"github.com/tanpawarit/buildershub-receptionist/agent/inventory"
	"github.com/tanpawarit/buildershub-receptionist/agent/transfer"
)

type stubSource struct {
	info     inventory.StockInfo
	err      error
	gotItem  string
	gotStore string
}

func (s *stubSource) Lookup(_ context.Context, item, storeID string) (inventory.StockInfo, error) {
	s.gotItem, s.gotStore = item, storeID
	return s.info, s.err
}

type stubTransferer struct {
	gotReason string
	result    transfer.HandoffResult
	err       error
}

func (s *stubTransferer) Transfer(_ context.Context, _ contractx.Session, reason string) (transfer.HandoffResult, error) {
	s.gotReason = reason
	return s.result, s.err
}

type nopSession struct{}

func (nopSession) ID() string                              { return "call-1" }
func (nopSession) Say(context.Context, string, bool) error { return nil }
func (nopSession) History() []contractx.ChatMessage        { return nil }
func (nopSession) Shutdown(context.Context) error          { return nil }

func payloadJSON(t *testing.T, out contractx.ToolResult) string {
	t.Helper()
	raw, err := json.Marshal(out.Payload())
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(raw)
}

func TestInfosDeclareFourTools(t *testing.T) {
	t.Parallel()

	infos, executor := Build(Handlers{})
	if executor == nil {
		t.Fatal("executor must not be nil")
	}
	want := []string{
		contractx.ToolInventoryCheck,
		contractx.ToolGetStoreHours,
		contractx.ToolGetStoreDepartments,
		contractx.ToolTransferToHuman,
	}
	if len(infos) != len(want) {
		t.Fatalf("expected %d tool infos, got %d", len(want), len(infos))
	}
	for i, name := range want {
		if infos[i].Name != name {
			t.Fatalf("infos[%d].Name = %s, want %s", i, infos[i].Name, name)
		}
		if _, ok := argSchemas[name]; !ok {
			t.Fatalf("no argument schema for %s", name)
		}
	}
}

func TestGetStoreHoursOakville(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	out, err := executor(context.Background(), contractx.ToolGetStoreHours, map[string]any{"store_location": " OAKVILLE "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"success":true,"store_name":"Oakville","hours":{"Monday - Saturday":"8:00 AM to 9:00 PM","Sunday":"10:00 AM to 6:00 PM"}}`
	if got := payloadJSON(t, out); got != want {
		t.Fatalf("payload = %s\nwant      %s", got, want)
	}
}

func TestGetStoreDepartments(t *testing.T) {
	t.Parallel()

	cases := []struct {
		location string
		want     string
	}{
		{"Burnaby", `{"success":true,"store_name":"Burnaby","departments":["Sales","Customer Service","Pro Desk"]}`},
		{"halifax", `{"success":true,"store_name":"Halifax","departments":["Sales","Customer Service","Tool Rental","Garden Center"]}`},
	}

	executor := NewExecutor(Handlers{})
	for _, tc := range cases {
		out, err := executor(context.Background(), contractx.ToolGetStoreDepartments, map[string]any{"store_location": tc.location})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.location, err)
		}
		if got := payloadJSON(t, out); got != tc.want {
			t.Fatalf("%s: payload = %s, want %s", tc.location, got, tc.want)
		}
	}
}

func TestUnknownLocationFailure(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	for _, tool := range []string{contractx.ToolGetStoreHours, contractx.ToolGetStoreDepartments} {
		out, err := executor(context.Background(), tool, map[string]any{"store_location": "Toronto"})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tool, err)
		}
		want := `{"success":false,"error":"Unknown store location: Toronto. Valid locations are: Oakville, Burnaby, or Halifax"}`
		if got := payloadJSON(t, out); got != want {
			t.Fatalf("%s: payload = %s, want %s", tool, got, want)
		}
	}
}

func TestInventoryCheckMockData(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	out, err := executor(context.Background(), contractx.ToolInventoryCheck, map[string]any{
		"item_name":      "2x4s",
		"store_location": "Halifax",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, ok := out.Result.(contractx.InventoryResult)
	if !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if result.StoreName != "Halifax" || result.StoreID != "123e4567-e89b-12d3-a456-426614174000" {
		t.Fatalf("unexpected store: %+v", result)
	}
	if !result.Success || !result.InStock || result.Quantity != 150 || result.Price != "$4.97" {
		t.Fatalf("unexpected stock: %+v", result)
	}
	if result.ItemName != "2x4s" || result.Aisle != "Building Materials, Aisle 12" {
		t.Fatalf("unexpected item fields: %+v", result)
	}
}

func TestInventoryCheckUnknownLocationSkipsSource(t *testing.T) {
	t.Parallel()

	src := &stubSource{}
	executor := NewExecutor(Handlers{Inventory: src})
	out, err := executor(context.Background(), contractx.ToolInventoryCheck, map[string]any{
		"item_name":      "nails",
		"store_location": "Vancouver",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := out.Result.(contractx.Failure); !ok {
		t.Fatalf("unexpected result type: %T", out.Result)
	}
	if src.gotStore != "" {
		t.Fatal("inventory source called for an unknown location")
	}
}

func TestInventoryCheckNormalizesItem(t *testing.T) {
	t.Parallel()

	src := &stubSource{info: inventory.StockInfo{Quantity: 0, Price: decimal.RequireFromString("12")}}
	executor := NewExecutor(Handlers{Inventory: src})
	out, err := executor(context.Background(), contractx.ToolInventoryCheck, map[string]any{
		"item_name":      "  deck   stain ",
		"store_location": "oakville",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.gotItem != "deck stain" || src.gotStore != "8c5dc6ab-a958-4b1d-be32-5b38bdb21b80" {
		t.Fatalf("source got item=%q store=%q", src.gotItem, src.gotStore)
	}
	result := out.Result.(contractx.InventoryResult)
	if result.InStock || result.Price != "$12.00" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestInventoryCheckEmptyItem(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	out, err := executor(context.Background(), contractx.ToolInventoryCheck, map[string]any{
		"item_name":      "   ",
		"store_location": "Halifax",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fail, ok := out.Result.(contractx.Failure)
	if !ok || fail.Error != askForItemMessage {
		t.Fatalf("unexpected result: %#v", out.Result)
	}
}

func TestInventoryCheckSourceErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"not found", inventory.ErrItemNotFound, "We could not find flux capacitor in the catalog for Halifax."},
		{"backend down", errors.New("dial tcp: connection refused"), "Inventory is temporarily unavailable for Halifax. Please try again in a moment."},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			ctx := zerolog.New(&buf).WithContext(context.Background())
			executor := NewExecutor(Handlers{Inventory: &stubSource{err: tc.err}})
			out, err := executor(ctx, contractx.ToolInventoryCheck, map[string]any{
				"item_name":      "flux capacitor",
				"store_location": "Halifax",
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			fail, ok := out.Result.(contractx.Failure)
			if !ok || fail.Error != tc.want {
				t.Fatalf("unexpected result: %#v", out.Result)
			}
			if strings.Contains(fail.Error, "connection refused") {
				t.Fatal("source error leaked into tool result")
			}
		})
	}
}

func TestValidationRejectsMissingArgs(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	out, err := executor(context.Background(), contractx.ToolInventoryCheck, map[string]any{"item_name": "nails"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.Error, "store_location") {
		t.Fatalf("expected store_location validation error, got %q", out.Error)
	}

	out, err = executor(context.Background(), contractx.ToolGetStoreHours, map[string]any{"store_location": 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected type validation error")
	}
	if got := payloadJSON(t, out); !strings.HasPrefix(got, `{"success":false,"error":`) {
		t.Fatalf("payload = %s", got)
	}
}

func TestUnknownTool(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{})
	out, err := executor(context.Background(), "math.evaluate", map[string]any{"expression": "1+1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Tool != "math.evaluate" || !strings.Contains(out.Error, "unknown tool") {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestUnknownToolsShareOneMetricLabel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	executor := NewExecutor(Handlers{})
	for _, name := range []string{"bogus_tool_a", "bogus_tool_b"} {
		if _, err := executor(ctx, name, nil); err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
	}

	if !toolInvocations.DeleteLabelValues(unknownToolLabel, outcomeRejected) {
		t.Fatal("unknown tools were not counted")
	}
	for _, name := range []string{"bogus_tool_a", "bogus_tool_b"} {
		if toolInvocations.DeleteLabelValues(name, outcomeRejected) {
			t.Fatalf("invocation series created for %s", name)
		}
		if toolDuration.DeleteLabelValues(name) {
			t.Fatalf("duration series created for %s", name)
		}
		if !strings.Contains(buf.String(), name) {
			t.Fatalf("tool name %s not logged: %s", name, buf.String())
		}
	}
}

func TestTransferToHumanNeedsSession(t *testing.T) {
	t.Parallel()

	executor := NewExecutor(Handlers{Transfer: &stubTransferer{}})
	_, err := executor(context.Background(), contractx.ToolTransferToHuman, map[string]any{})
	te, ok := contractx.AsToolError(err)
	if !ok {
		t.Fatalf("expected ToolError, got %v", err)
	}
	if !errors.Is(err, contractx.ErrNoSession) || te.Message != transfer.UnavailableMessage {
		t.Fatalf("unexpected error: %v (cause %v)", te, te.Cause)
	}
}

func TestTransferToHumanDelegates(t *testing.T) {
	t.Parallel()

	tr := &stubTransferer{result: transfer.HandoffResult{SupervisorIdentity: "supervisor-9"}}
	executor := NewExecutor(Handlers{Transfer: tr})
	ctx := contractx.WithSession(context.Background(), nopSession{})

	out, err := executor(ctx, contractx.ToolTransferToHuman, map[string]any{"reason": "refund dispute"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.gotReason != "refund dispute" {
		t.Fatalf("reason = %q", tr.gotReason)
	}
	result, ok := out.Result.(contractx.TransferResult)
	if !ok || !result.Success || result.SupervisorIdentity != "supervisor-9" {
		t.Fatalf("unexpected result: %#v", out.Result)
	}
}

func TestTransferToHumanPassesToolError(t *testing.T) {
	t.Parallel()

	want := contractx.NewToolError(transfer.NoAnswerMessage, errors.New("timeout"))
	executor := NewExecutor(Handlers{Transfer: &stubTransferer{err: want}})
	ctx := contractx.WithSession(context.Background(), nopSession{})

	_, err := executor(ctx, contractx.ToolTransferToHuman, nil)
	if err != want {
		t.Fatalf("error = %v, want %v", err, want)
	}
}
