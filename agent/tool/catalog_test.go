package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	contractx "github.com/tanpawarit/screening-decision/agent/contract"
)

func TestCatalogNames(t *testing.T) {
	t.Parallel()

	var got []string
	for _, def := range Catalog() {
		got = append(got, def.Name)
	}
	want := []string{
		ToolCreateInterventionDecision,
		ToolCheckDuplicateDecision,
		ToolUpdateConversationStatus,
		ToolNotifyRecruiters,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("catalog names mismatch (-want +got):\n%s", diff)
	}
}

// Every catalog tool must reach a handler: with no arguments it fails validation, never as unknown.
func TestCatalogHandlerParity(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(nil)
	exec := contractx.ExecutionScope{ConversationID: uuid.New()}
	for _, def := range Catalog() {
		res := o.Execute(context.Background(), exec, contractx.ToolCall{ID: "call-" + def.Name, Name: def.Name})
		if res.Success {
			t.Fatalf("%s with empty args succeeded", def.Name)
		}
		if errors.Is(res.Err, contractx.ErrUnknownTool) {
			t.Fatalf("%s has no handler", def.Name)
		}
		if !errors.Is(res.Err, contractx.ErrValidation) {
			t.Fatalf("%s error = %v, want ErrValidation", def.Name, res.Err)
		}
	}
}

func TestCatalogArrayParamsHaveItemType(t *testing.T) {
	t.Parallel()

	for _, def := range Catalog() {
		for _, p := range def.Params {
			if p.Type == contractx.ParamArray && p.Items == "" {
				t.Fatalf("%s.%s is an array without item type", def.Name, p.Name)
			}
		}
	}
}

func TestInfos(t *testing.T) {
	t.Parallel()

	infos := Infos()
	if len(infos) != len(Catalog()) {
		t.Fatalf("Infos() len = %d, want %d", len(infos), len(Catalog()))
	}
	for _, info := range infos {
		if info.Name == "" || info.Desc == "" {
			t.Fatalf("incomplete tool info: %+v", info)
		}
		if info.ParamsOneOf == nil {
			t.Fatalf("%s has no params", info.Name)
		}
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	o := NewOrchestrator(nil)
	res := o.Execute(context.Background(), contractx.ExecutionScope{}, contractx.ToolCall{ID: "c1", Name: "delete_everything"})
	if res.Success {
		t.Fatal("unknown tool succeeded")
	}
	if !errors.Is(res.Err, contractx.ErrUnknownTool) {
		t.Fatalf("error = %v, want ErrUnknownTool", res.Err)
	}
	if res.ToolName != "delete_everything" || res.CallID != "c1" {
		t.Fatalf("result identity = %s/%s", res.ToolName, res.CallID)
	}
}

func TestMetricLabelBoundedByCatalog(t *testing.T) {
	t.Parallel()

	for _, def := range Catalog() {
		if got := MetricLabel(def.Name); got != def.Name {
			t.Fatalf("MetricLabel(%q) = %q, want the tool name", def.Name, got)
		}
	}
	for _, name := range []string{"send_email", "", "create_intervention_decision_v2", "x.y.z"} {
		if got := MetricLabel(name); got != UnknownToolLabel {
			t.Fatalf("MetricLabel(%q) = %q, want %q", name, got, UnknownToolLabel)
		}
	}
}
