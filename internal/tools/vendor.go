package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/everafter-ai/everafter/internal/planning"
)

func (e *Executor) loadVendors(ctx context.Context, tc Context) (*planning.Page, []planning.Vendor, Result) {
	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindVendors)
	if err != nil {
		return nil, nil, mapErr(err)
	}
	var vendors []planning.Vendor
	if err := page.DecodeItems(&vendors); err != nil {
		return nil, nil, failResult(CodeInternal, "corrupt vendor page: "+err.Error())
	}
	return page, vendors, Result{Success: true}
}

func (e *Executor) saveVendors(ctx context.Context, page *planning.Page, vendors []planning.Vendor) Result {
	if err := page.EncodeItems(vendors); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return Result{Success: true}
}

func (e *Executor) findVendor(vendors []planning.Vendor, params map[string]any) int {
	if id, ok := strParam(params, "id"); ok {
		for i, v := range vendors {
			if v.ID == id {
				return i
			}
		}
		return -1
	}
	if name, ok := strParam(params, "name"); ok {
		descriptors := make([]string, len(vendors))
		for i, v := range vendors {
			descriptors[i] = v.Name
		}
		return fuzzyIndex(descriptors, name, e.policy)
	}
	return -1
}

func (e *Executor) addVendor(ctx context.Context, params map[string]any, tc Context) Result {
	name, ok := strParam(params, "name")
	if !ok {
		return failResult(CodeInvalidParams, "name is required")
	}
	category, ok := strParam(params, "category")
	if !ok {
		return failResult(CodeInvalidParams, "category is required")
	}

	page, vendors, res := e.loadVendors(ctx, tc)
	if !res.Success {
		return res
	}

	v := planning.Vendor{
		ID:       uuid.NewString(),
		Name:     name,
		Category: category,
		Status:   "researching",
	}
	if s, ok := strParam(params, "status"); ok {
		v.Status = s
	}
	if c, ok := intParam(params, "cost"); ok {
		v.Cost = c
	}
	v.Notes, _ = strParam(params, "notes")

	vendors = append(vendors, v)
	if res := e.saveVendors(ctx, page, vendors); !res.Success {
		return res
	}
	return okResult(v)
}

func (e *Executor) updateVendor(ctx context.Context, params map[string]any, tc Context) Result {
	page, vendors, res := e.loadVendors(ctx, tc)
	if !res.Success {
		return res
	}

	i := e.findVendor(vendors, params)
	if i < 0 {
		return failResult(CodeNotFound, "no vendor matched")
	}

	if s, ok := strParam(params, "status"); ok {
		vendors[i].Status = s
	}
	if c, ok := strParam(params, "category"); ok {
		vendors[i].Category = c
	}
	if n, ok := strParam(params, "notes"); ok {
		vendors[i].Notes = n
	}
	if c, ok := intParam(params, "cost"); ok {
		vendors[i].Cost = c
	}

	if res := e.saveVendors(ctx, page, vendors); !res.Success {
		return res
	}
	return okResult(vendors[i])
}

func (e *Executor) deleteVendor(ctx context.Context, params map[string]any, tc Context) Result {
	page, vendors, res := e.loadVendors(ctx, tc)
	if !res.Success {
		return res
	}

	i := e.findVendor(vendors, params)
	if i < 0 {
		return failResult(CodeNotFound, "no vendor matched")
	}

	removed := vendors[i]
	vendors = append(vendors[:i], vendors[i+1:]...)
	if res := e.saveVendors(ctx, page, vendors); !res.Success {
		return res
	}
	return okResult(map[string]any{"deleted": removed})
}
