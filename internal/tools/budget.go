package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/everafter-ai/everafter/internal/planning"
)

func (e *Executor) loadBudget(ctx context.Context, tc Context) (*planning.Page, []planning.BudgetItem, Result) {
	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindBudgetItems)
	if err != nil {
		return nil, nil, mapErr(err)
	}
	var items []planning.BudgetItem
	if err := page.DecodeItems(&items); err != nil {
		return nil, nil, failResult(CodeInternal, "corrupt budget page: "+err.Error())
	}
	return page, items, Result{Success: true}
}

func (e *Executor) saveBudget(ctx context.Context, page *planning.Page, items []planning.BudgetItem) Result {
	if err := page.EncodeItems(items); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return Result{Success: true}
}

// findBudgetItem resolves by exact id first, then falls back to a fuzzy
// match on vendor, then category. matchedBy names the fuzzy param that
// located the item so callers can keep the search term out of the stored
// fields.
func (e *Executor) findBudgetItem(items []planning.BudgetItem, params map[string]any) (idx int, matchedBy string) {
	if id, ok := strParam(params, "id"); ok {
		for i, it := range items {
			if it.ID == id {
				return i, ""
			}
		}
		return -1, ""
	}

	if vendor, ok := strParam(params, "vendor"); ok {
		descriptors := make([]string, len(items))
		for i, it := range items {
			descriptors[i] = it.Vendor
		}
		if i := fuzzyIndex(descriptors, vendor, e.policy); i >= 0 {
			return i, "vendor"
		}
	}
	if category, ok := strParam(params, "category"); ok {
		descriptors := make([]string, len(items))
		for i, it := range items {
			descriptors[i] = it.Category
		}
		if i := fuzzyIndex(descriptors, category, e.policy); i >= 0 {
			return i, "category"
		}
	}
	return -1, ""
}

func (e *Executor) addBudgetItem(ctx context.Context, params map[string]any, tc Context) Result {
	category, ok := strParam(params, "category")
	if !ok {
		return failResult(CodeInvalidParams, "category is required")
	}

	page, items, res := e.loadBudget(ctx, tc)
	if !res.Success {
		return res
	}

	item := planning.BudgetItem{
		ID:       uuid.NewString(),
		Category: category,
	}
	item.Vendor, _ = strParam(params, "vendor")
	item.Notes, _ = strParam(params, "notes")
	if v, ok := intParam(params, "totalCost"); ok {
		item.TotalCost = v
	}
	if v, ok := intParam(params, "amountPaid"); ok {
		item.AmountPaid = v
	}

	items = append(items, item)
	if res := e.saveBudget(ctx, page, items); !res.Success {
		return res
	}
	return okResult(item)
}

func (e *Executor) updateBudgetItem(ctx context.Context, params map[string]any, tc Context) Result {
	page, items, res := e.loadBudget(ctx, tc)
	if !res.Success {
		return res
	}

	i, matchedBy := e.findBudgetItem(items, params)
	if i < 0 {
		return failResult(CodeNotFound, "no budget item matched")
	}

	if v, ok := strParam(params, "category"); ok && matchedBy != "category" {
		items[i].Category = v
	}
	if v, ok := strParam(params, "vendor"); ok && matchedBy != "vendor" {
		items[i].Vendor = v
	}
	if v, ok := strParam(params, "notes"); ok {
		items[i].Notes = v
	}
	if v, ok := intParam(params, "totalCost"); ok {
		items[i].TotalCost = v
	}
	if v, ok := intParam(params, "amountPaid"); ok {
		items[i].AmountPaid = v
	}

	if res := e.saveBudget(ctx, page, items); !res.Success {
		return res
	}
	return okResult(items[i])
}

func (e *Executor) deleteBudgetItem(ctx context.Context, params map[string]any, tc Context) Result {
	page, items, res := e.loadBudget(ctx, tc)
	if !res.Success {
		return res
	}

	i, _ := e.findBudgetItem(items, params)
	if i < 0 {
		return failResult(CodeNotFound, "no budget item matched")
	}

	removed := items[i]
	items = append(items[:i], items[i+1:]...)
	if res := e.saveBudget(ctx, page, items); !res.Success {
		return res
	}
	return okResult(map[string]any{"deleted": removed})
}

func (e *Executor) budgetSummary(ctx context.Context, tc Context) Result {
	_, items, res := e.loadBudget(ctx, tc)
	if !res.Success {
		return res
	}

	var total, paid int64
	byCategory := make(map[string]int64)
	for _, it := range items {
		total += it.TotalCost
		paid += it.AmountPaid
		byCategory[it.Category] += it.TotalCost
	}
	return okResult(map[string]any{
		"item_count":  len(items),
		"total_cost":  total,
		"amount_paid": paid,
		"remaining":   total - paid,
		"by_category": byCategory,
	})
}
