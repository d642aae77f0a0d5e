package tools

import (
	"context"

	"github.com/google/uuid"

	"github.com/everafter-ai/everafter/internal/decisions"
	"github.com/everafter-ai/everafter/internal/planning"
)

func (e *Executor) addGuest(ctx context.Context, params map[string]any, tc Context) Result {
	name, ok := strParam(params, "name")
	if !ok {
		return failResult(CodeInvalidParams, "name is required")
	}

	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindGuests)
	if err != nil {
		return mapErr(err)
	}
	var guests []planning.Guest
	if err := page.DecodeItems(&guests); err != nil {
		return failResult(CodeInternal, "corrupt guest page: "+err.Error())
	}

	g := planning.Guest{ID: uuid.NewString(), Name: name}
	g.Side, _ = strParam(params, "side")
	g.RSVP, _ = strParam(params, "rsvp")

	guests = append(guests, g)
	if err := page.EncodeItems(guests); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return okResult(g)
}

func (e *Executor) updateRSVP(ctx context.Context, params map[string]any, tc Context) Result {
	rsvp, ok := strParam(params, "rsvp")
	if !ok {
		return failResult(CodeInvalidParams, "rsvp is required")
	}

	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindGuests)
	if err != nil {
		return mapErr(err)
	}
	var guests []planning.Guest
	if err := page.DecodeItems(&guests); err != nil {
		return failResult(CodeInternal, "corrupt guest page: "+err.Error())
	}

	i := -1
	if id, ok := strParam(params, "id"); ok {
		for j, g := range guests {
			if g.ID == id {
				i = j
				break
			}
		}
	} else if name, ok := strParam(params, "name"); ok {
		descriptors := make([]string, len(guests))
		for j, g := range guests {
			descriptors[j] = g.Name
		}
		i = fuzzyIndex(descriptors, name, e.policy)
	}
	if i < 0 {
		return failResult(CodeNotFound, "no guest matched")
	}

	guests[i].RSVP = rsvp
	if err := page.EncodeItems(guests); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return okResult(guests[i])
}

func (e *Executor) addTask(ctx context.Context, params map[string]any, tc Context) Result {
	title, ok := strParam(params, "title")
	if !ok {
		return failResult(CodeInvalidParams, "title is required")
	}

	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindTasks)
	if err != nil {
		return mapErr(err)
	}
	var tasks []planning.Task
	if err := page.DecodeItems(&tasks); err != nil {
		return failResult(CodeInternal, "corrupt task page: "+err.Error())
	}

	task := planning.Task{ID: uuid.NewString(), Title: title}
	task.Due, _ = strParam(params, "due")

	tasks = append(tasks, task)
	if err := page.EncodeItems(tasks); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return okResult(task)
}

func (e *Executor) completeTask(ctx context.Context, params map[string]any, tc Context) Result {
	page, err := e.pages.GetOrCreate(ctx, tc.TenantID, planning.KindTasks)
	if err != nil {
		return mapErr(err)
	}
	var tasks []planning.Task
	if err := page.DecodeItems(&tasks); err != nil {
		return failResult(CodeInternal, "corrupt task page: "+err.Error())
	}

	i := -1
	if id, ok := strParam(params, "id"); ok {
		for j, t := range tasks {
			if t.ID == id {
				i = j
				break
			}
		}
	} else if title, ok := strParam(params, "title"); ok {
		descriptors := make([]string, len(tasks))
		for j, t := range tasks {
			descriptors[j] = t.Title
		}
		i = fuzzyIndex(descriptors, title, e.policy)
	}
	if i < 0 {
		return failResult(CodeNotFound, "no task matched")
	}

	tasks[i].Done = true
	if err := page.EncodeItems(tasks); err != nil {
		return failResult(CodeInternal, err.Error())
	}
	if err := e.pages.Save(ctx, page); err != nil {
		return mapErr(err)
	}
	return okResult(tasks[i])
}

func (e *Executor) updateDecision(ctx context.Context, params map[string]any, tc Context) Result {
	category, ok := strParam(params, "category")
	if !ok {
		return failResult(CodeInvalidParams, "category is required")
	}
	name, _ := strParam(params, "name")

	status := decisions.StatusDecided
	if s, ok := strParam(params, "status"); ok {
		switch decisions.Status(s) {
		case decisions.StatusUndecided, decisions.StatusDecided, decisions.StatusLocked:
			status = decisions.Status(s)
		default:
			return failResult(CodeInvalidParams, "status must be undecided, decided or locked")
		}
	}

	d, err := e.tracker.Update(ctx, tc.TenantID, category, name, status)
	if err != nil {
		return mapErr(err)
	}
	return okResult(d)
}

func (e *Executor) lockDecision(ctx context.Context, params map[string]any, tc Context) Result {
	category, ok := strParam(params, "category")
	if !ok {
		return failResult(CodeInvalidParams, "category is required")
	}
	d, err := e.tracker.Update(ctx, tc.TenantID, category, "", decisions.StatusLocked)
	if err != nil {
		return mapErr(err)
	}
	return okResult(d)
}

func (e *Executor) analyzeGaps(ctx context.Context, tc Context) Result {
	gaps, err := planning.AnalyzeGaps(ctx, e.pages, tc.TenantID)
	if err != nil {
		return mapErr(err)
	}
	return okResult(gaps)
}
