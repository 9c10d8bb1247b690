package dto

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/gobalance/internal/usecase"
)

func TestApplyRequest_ToUseCaseInput(t *testing.T) {
	req := ApplyRequest{
		Amount:   decimal.RequireFromString("100.00"),
		Strategy: "optimistic",
		Guard:    "insert-first",
	}

	input, err := req.ToUseCaseInput("bal-1", "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if input.BalanceID != "bal-1" || input.Token != "tok-1" {
		t.Fatalf("expected ids to carry over, got %+v", input)
	}

	if input.Strategy != usecase.StrategyOptimistic {
		t.Fatalf("expected optimistic strategy, got %s", input.Strategy)
	}

	if input.Guard != usecase.GuardInsertFirst {
		t.Fatalf("expected insert-first guard, got %s", input.Guard)
	}
}

func TestApplyRequest_ToUseCaseInput_Defaults(t *testing.T) {
	req := ApplyRequest{Amount: decimal.NewFromInt(10)}

	input, err := req.ToUseCaseInput("bal-1", "tok-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Empty strategy and guard are resolved by the use case.
	if input.Strategy != "" || input.Guard != "" {
		t.Fatalf("expected empty strategy/guard, got %+v", input)
	}
}

func TestApplyRequest_ToUseCaseInput_UnknownStrategy(t *testing.T) {
	req := ApplyRequest{
		Amount:   decimal.NewFromInt(10),
		Strategy: "hopeful",
	}

	if _, err := req.ToUseCaseInput("bal-1", "tok-1"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestApplyRequest_ToUseCaseInput_UnknownGuard(t *testing.T) {
	req := ApplyRequest{
		Amount: decimal.NewFromInt(10),
		Guard:  "hope",
	}

	if _, err := req.ToUseCaseInput("bal-1", "tok-1"); err == nil {
		t.Fatalf("expected error for unknown guard")
	}
}
