// Package tools executes model-issued operations against the tenant's
// planning entities. Every outcome is a structured Result; nothing in here
// panics or returns a bare error to the transport.
package tools

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/planning"
)

// Name identifies one tool in the closed catalog. The transport hands us an
// arbitrary string; anything outside the catalog is an unknown_tool failure,
// never a dispatch on an unchecked key.
type Name string

const (
	AddBudgetItem    Name = "add_budget_item"
	UpdateBudgetItem Name = "update_budget_item"
	DeleteBudgetItem Name = "delete_budget_item"
	GetBudgetSummary Name = "get_budget_summary"
	AddVendor        Name = "add_vendor"
	UpdateVendor     Name = "update_vendor"
	DeleteVendor     Name = "delete_vendor"
	AddGuest         Name = "add_guest"
	UpdateRSVP       Name = "update_rsvp"
	AddTask          Name = "add_task"
	CompleteTask     Name = "complete_task"
	UpdateDecision   Name = "update_decision"
	LockDecision     Name = "lock_decision"
	AnalyzeGaps      Name = "analyze_gaps"
)

var catalog = map[Name]struct{}{
	AddBudgetItem: {}, UpdateBudgetItem: {}, DeleteBudgetItem: {}, GetBudgetSummary: {},
	AddVendor: {}, UpdateVendor: {}, DeleteVendor: {},
	AddGuest: {}, UpdateRSVP: {},
	AddTask: {}, CompleteTask: {},
	UpdateDecision: {}, LockDecision: {}, AnalyzeGaps: {},
}

// Context scopes a tool call to one tenant.
type Context struct {
	TenantID uint64
}

// Failure codes.
const (
	CodeUnknownTool   = "unknown_tool"
	CodeInvalidParams = "invalid_params"
	CodeNotFound      = "not_found"
	CodeConflict      = "conflict"
	CodeInternal      = "internal"
)

type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error,omitempty"`
}

func okResult(data any) Result {
	return Result{Success: true, Data: data}
}

func failResult(code, msg string) Result {
	return Result{Success: false, Code: code, Error: msg}
}

type Executor struct {
	pages   *planning.Repo
	tracker *decisions.Tracker
	policy  MatchPolicy
}

func NewExecutor(pages *planning.Repo, tracker *decisions.Tracker, policy MatchPolicy) *Executor {
	if policy == nil {
		policy = MatchFirst
	}
	return &Executor{pages: pages, tracker: tracker, policy: policy}
}

// Execute dispatches one tool call. It never returns a Go error; failures
// of any kind come back as a structured Result.
func (e *Executor) Execute(ctx context.Context, toolName string, params map[string]any, tc Context) Result {
	name := Name(toolName)
	if _, ok := catalog[name]; !ok {
		return failResult(CodeUnknownTool, "unknown tool: "+toolName)
	}
	if tc.TenantID == 0 {
		return failResult(CodeInvalidParams, "tenant context required")
	}

	var res Result
	switch name {
	case AddBudgetItem:
		res = e.addBudgetItem(ctx, params, tc)
	case UpdateBudgetItem:
		res = e.updateBudgetItem(ctx, params, tc)
	case DeleteBudgetItem:
		res = e.deleteBudgetItem(ctx, params, tc)
	case GetBudgetSummary:
		res = e.budgetSummary(ctx, tc)
	case AddVendor:
		res = e.addVendor(ctx, params, tc)
	case UpdateVendor:
		res = e.updateVendor(ctx, params, tc)
	case DeleteVendor:
		res = e.deleteVendor(ctx, params, tc)
	case AddGuest:
		res = e.addGuest(ctx, params, tc)
	case UpdateRSVP:
		res = e.updateRSVP(ctx, params, tc)
	case AddTask:
		res = e.addTask(ctx, params, tc)
	case CompleteTask:
		res = e.completeTask(ctx, params, tc)
	case UpdateDecision:
		res = e.updateDecision(ctx, params, tc)
	case LockDecision:
		res = e.lockDecision(ctx, params, tc)
	case AnalyzeGaps:
		res = e.analyzeGaps(ctx, tc)
	}

	if !res.Success && res.Code == CodeInternal {
		log.Printf("[tools] %s tenant=%d failed: %s", toolName, tc.TenantID, res.Error)
	}
	return res
}

// mapErr converts store errors into structured failures.
func mapErr(err error) Result {
	switch {
	case errors.Is(err, planning.ErrVersionConflict):
		return failResult(CodeConflict, "the data changed underneath this call, try again")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return failResult(CodeNotFound, "no matching record")
	default:
		return failResult(CodeInternal, err.Error())
	}
}
