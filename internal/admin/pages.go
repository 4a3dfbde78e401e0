package admin

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/access"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
)

// PageInput carries the raw fields of a page
type PageInput struct {
	Description string `json:"description"`
	DialogKind  int    `json:"dialog_kind"`
	Say         string `json:"say"`
	Arguments   string `json:"arguments"`
}

func (in PageInput) fields() (dialogue.PageFields, error) {
	kind, err := dialogue.ParseDialogKind(in.DialogKind)
	if err != nil {
		return dialogue.PageFields{}, err
	}
	return dialogue.PageFields{
		Description: in.Description,
		DialogKind:  kind,
		Say:         in.Say,
		Arguments:   in.Arguments,
	}, nil
}

// CheckInput carries the raw fields of a check. FailPageID 0 means no fail page.
type CheckInput struct {
	Kind        int    `json:"kind"`
	Operator    int    `json:"operator"`
	StringParam string `json:"string_param"`
	IntParam1   int    `json:"int_param1"`
	IntParam2   int    `json:"int_param2"`
	ItemID      int    `json:"item_id"`
	FailPageID  int    `json:"fail_page_id"`
}

func (in CheckInput) fields() (dialogue.CheckFields, error) {
	kind, err := dialogue.ParseCheckKind(in.Kind)
	if err != nil {
		return dialogue.CheckFields{}, err
	}
	op, err := dialogue.ParseOperator(in.Operator)
	if err != nil {
		return dialogue.CheckFields{}, err
	}
	return dialogue.CheckFields{
		Kind:        kind,
		Operator:    op,
		StringParam: in.StringParam,
		IntParam1:   in.IntParam1,
		IntParam2:   in.IntParam2,
		ItemID:      in.ItemID,
	}, nil
}

// ActionInput carries the raw fields of an action
type ActionInput struct {
	Kind        int    `json:"kind"`
	StringParam string `json:"string_param"`
	IntParam1   int    `json:"int_param1"`
	IntParam2   int    `json:"int_param2"`
	ItemID      int    `json:"item_id"`
	MapID       int    `json:"map_id"`
}

func (in ActionInput) fields() (dialogue.ActionFields, error) {
	kind, err := dialogue.ParseActionKind(in.Kind)
	if err != nil {
		return dialogue.ActionFields{}, err
	}
	return dialogue.ActionFields{
		Kind:        kind,
		StringParam: in.StringParam,
		IntParam1:   in.IntParam1,
		IntParam2:   in.IntParam2,
		ItemID:      in.ItemID,
		MapID:       in.MapID,
	}, nil
}

// GoodInput carries the raw fields of a good. Rate <= 0 becomes 1.
type GoodInput struct {
	ItemID int     `json:"item_id"`
	Rate   float64 `json:"rate"`
	Cost   int     `json:"cost"`
}

// PageDetail is a page with one level of children and labelled references
type PageDetail struct {
	ID            int            `json:"id"`
	Description   string         `json:"description"`
	DialogKind    int            `json:"dialog_kind"`
	DialogLabel   string         `json:"dialog_label"`
	Say           string         `json:"say"`
	Arguments     string         `json:"arguments,omitempty"`
	SuccessPageID int            `json:"success_page_id,omitempty"`
	SuccessPage   string         `json:"success_page,omitempty"`
	Checks        []CheckDetail  `json:"checks"`
	Actions       []ActionDetail `json:"actions"`
	Buttons       []ButtonDetail `json:"buttons"`
	Goods         []GoodDetail   `json:"goods"`
}

type CheckDetail struct {
	ID            int    `json:"id"`
	Kind          int    `json:"kind"`
	KindLabel     string `json:"kind_label"`
	Operator      int    `json:"operator"`
	OperatorLabel string `json:"operator_label"`
	StringParam   string `json:"string_param,omitempty"`
	IntParam1     int    `json:"int_param1"`
	IntParam2     int    `json:"int_param2"`
	ItemID        int    `json:"item_id,omitempty"`
	Item          string `json:"item,omitempty"`
	FailPageID    int    `json:"fail_page_id,omitempty"`
	FailPage      string `json:"fail_page,omitempty"`
}

type ActionDetail struct {
	ID          int    `json:"id"`
	Kind        int    `json:"kind"`
	KindLabel   string `json:"kind_label"`
	StringParam string `json:"string_param,omitempty"`
	IntParam1   int    `json:"int_param1"`
	IntParam2   int    `json:"int_param2"`
	ItemID      int    `json:"item_id,omitempty"`
	Item        string `json:"item,omitempty"`
	MapID       int    `json:"map_id,omitempty"`
	Map         string `json:"map,omitempty"`
}

type ButtonDetail struct {
	ID                int    `json:"id"`
	ButtonID          int    `json:"button_id"`
	DestinationPageID int    `json:"destination_page_id,omitempty"`
	DestinationPage   string `json:"destination_page,omitempty"`
}

type GoodDetail struct {
	ID     int     `json:"id"`
	ItemID int     `json:"item_id"`
	Item   string  `json:"item"`
	Rate   float64 `json:"rate"`
	Cost   int     `json:"cost"`
}

// GetPage returns the page detail view
func (s *Service) GetPage(ctx context.Context, id int) Result {
	return s.query(ctx, access.Supervisor, "Get page", func() (Result, error) {
		p, err := s.resolvePage(id)
		if err != nil {
			return Result{}, err
		}
		return ok("", s.pageDetail(p)), nil
	})
}

// UpdatePage replaces a page's scalar fields
func (s *Service) UpdatePage(ctx context.Context, id int, in PageInput) Result {
	return s.mutate(ctx, "Update page", func() (Result, error) {
		p, err := s.resolvePage(id)
		if err != nil {
			return Result{}, err
		}
		fields, err := in.fields()
		if err != nil {
			return Result{}, err
		}
		if err := s.store.UpdatePage(p.ID, fields); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Page [%d] %s updated", p.ID, p.Description), nil), nil
	})
}

// SetSuccessPage links a page to the page shown when all its checks pass
func (s *Service) SetSuccessPage(ctx context.Context, pageID, targetID int) Result {
	return s.mutate(ctx, "Set success page", func() (Result, error) {
		p, err := s.resolvePage(pageID)
		if err != nil {
			return Result{}, err
		}
		if err := s.requireTarget(targetID); err != nil {
			return Result{}, err
		}
		if err := s.store.SetSuccessPage(p.ID, targetID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Page [%d] success page set to [%d]", p.ID, targetID), nil), nil
	})
}

// DeletePage cascades a page and everything only it leads to
func (s *Service) DeletePage(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete page", func() (Result, error) {
		p, err := s.resolvePage(id)
		if err != nil {
			return Result{}, err
		}
		report, err := s.store.DeletePage(p.ID)
		if err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Page [%d] deleted with %d descendant pages", p.ID, len(report.Pages)-1), report), nil
	})
}

// AddCheck appends a check to a page
func (s *Service) AddCheck(ctx context.Context, pageID int, in CheckInput) Result {
	return s.mutate(ctx, "Add check", func() (Result, error) {
		p, err := s.resolvePage(pageID)
		if err != nil {
			return Result{}, err
		}
		fields, err := s.checkFields(in)
		if err != nil {
			return Result{}, err
		}
		c, err := s.store.CreateCheck(p.ID, fields)
		if err != nil {
			return Result{}, err
		}
		if err := s.store.SetFailPage(c.ID, in.FailPageID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Check [%d] added to page [%d]", c.ID, p.ID), map[string]int{"id": c.ID}), nil
	})
}

// UpdateCheck replaces a check's fields and fail page
func (s *Service) UpdateCheck(ctx context.Context, id int, in CheckInput) Result {
	return s.mutate(ctx, "Update check", func() (Result, error) {
		if s.store.Check(id) == nil {
			return Result{}, errNotFound("check %d", id)
		}
		fields, err := s.checkFields(in)
		if err != nil {
			return Result{}, err
		}
		if err := s.store.UpdateCheck(id, fields); err != nil {
			return Result{}, err
		}
		if err := s.store.SetFailPage(id, in.FailPageID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Check [%d] updated", id), nil), nil
	})
}

// DeleteCheck removes a check. Its fail page is left in place.
func (s *Service) DeleteCheck(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete check", func() (Result, error) {
		if err := s.store.RemoveCheck(id); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Check [%d] deleted", id), nil), nil
	})
}

// AddAction appends an action to a page
func (s *Service) AddAction(ctx context.Context, pageID int, in ActionInput) Result {
	return s.mutate(ctx, "Add action", func() (Result, error) {
		p, err := s.resolvePage(pageID)
		if err != nil {
			return Result{}, err
		}
		fields, err := s.actionFields(in)
		if err != nil {
			return Result{}, err
		}
		a, err := s.store.CreateAction(p.ID, fields)
		if err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Action [%d] added to page [%d]", a.ID, p.ID), map[string]int{"id": a.ID}), nil
	})
}

// UpdateAction replaces an action's fields
func (s *Service) UpdateAction(ctx context.Context, id int, in ActionInput) Result {
	return s.mutate(ctx, "Update action", func() (Result, error) {
		if s.store.Action(id) == nil {
			return Result{}, errNotFound("action %d", id)
		}
		fields, err := s.actionFields(in)
		if err != nil {
			return Result{}, err
		}
		if err := s.store.UpdateAction(id, fields); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Action [%d] updated", id), nil), nil
	})
}

// DeleteAction removes an action
func (s *Service) DeleteAction(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete action", func() (Result, error) {
		if err := s.store.RemoveAction(id); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Action [%d] deleted", id), nil), nil
	})
}

// AddButton appends a button without a destination
func (s *Service) AddButton(ctx context.Context, pageID, buttonID int) Result {
	return s.mutate(ctx, "Add button", func() (Result, error) {
		p, err := s.resolvePage(pageID)
		if err != nil {
			return Result{}, err
		}
		b, err := s.store.CreateButton(p.ID, buttonID)
		if err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Button [%d] added to page [%d]", b.ID, p.ID), map[string]int{"id": b.ID}), nil
	})
}

// UpdateButton changes a button's id and destination. Destination 0 clears it.
func (s *Service) UpdateButton(ctx context.Context, id, buttonID, destinationID int) Result {
	return s.mutate(ctx, "Update button", func() (Result, error) {
		if s.store.Button(id) == nil {
			return Result{}, errNotFound("button %d", id)
		}
		if err := s.requireTarget(destinationID); err != nil {
			return Result{}, err
		}
		if err := s.store.UpdateButton(id, buttonID); err != nil {
			return Result{}, err
		}
		if err := s.store.SetDestination(id, destinationID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Button [%d] updated", id), nil), nil
	})
}

// DeleteButton removes a button. Its destination page is left in place.
func (s *Service) DeleteButton(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete button", func() (Result, error) {
		if err := s.store.RemoveButton(id); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Button [%d] deleted", id), nil), nil
	})
}

// CreateButtonDestinationPage creates a page and links the button to it.
// The button must not have a destination yet.
func (s *Service) CreateButtonDestinationPage(ctx context.Context, buttonID int, in PageInput) Result {
	return s.mutate(ctx, "Create destination page", func() (Result, error) {
		b := s.store.Button(buttonID)
		if b == nil {
			return Result{}, errNotFound("button %d", buttonID)
		}
		if b.DestinationPageID != 0 {
			return Result{}, fmt.Errorf("%w: button %d already leads to page %d", dialogue.ErrConflict, buttonID, b.DestinationPageID)
		}
		fields, err := in.fields()
		if err != nil {
			return Result{}, err
		}
		p := s.store.CreatePage(fields)
		if err := s.store.SetDestination(buttonID, p.ID); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Destination page [%d] created for button [%d]", p.ID, buttonID), map[string]int{"page_id": p.ID}), nil
	})
}

// AddGood appends a good to a page. The item must exist.
func (s *Service) AddGood(ctx context.Context, pageID int, in GoodInput) Result {
	return s.mutate(ctx, "Add good", func() (Result, error) {
		p, err := s.resolvePage(pageID)
		if err != nil {
			return Result{}, err
		}
		item := s.catalog.Item(in.ItemID)
		if item == nil {
			return Result{}, errNotFound("item %d", in.ItemID)
		}
		g, err := s.store.CreateGood(p.ID, dialogue.GoodFields{ItemID: item.ID, Rate: in.Rate, Cost: in.Cost})
		if err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Good [%d] %s added to page [%d]", g.ID, item.Name, p.ID), map[string]int{"id": g.ID}), nil
	})
}

// UpdateGood changes a good. ItemID 0 keeps the current item.
func (s *Service) UpdateGood(ctx context.Context, id int, in GoodInput) Result {
	return s.mutate(ctx, "Update good", func() (Result, error) {
		if s.store.Good(id) == nil {
			return Result{}, errNotFound("good %d", id)
		}
		if err := s.requireItem(in.ItemID); err != nil {
			return Result{}, err
		}
		if err := s.store.UpdateGood(id, dialogue.GoodFields{ItemID: in.ItemID, Rate: in.Rate, Cost: in.Cost}); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Good [%d] updated", id), nil), nil
	})
}

// DeleteGood removes a good
func (s *Service) DeleteGood(ctx context.Context, id int) Result {
	return s.mutate(ctx, "Delete good", func() (Result, error) {
		if err := s.store.RemoveGood(id); err != nil {
			return Result{}, err
		}
		return ok(fmt.Sprintf("Good [%d] deleted", id), nil), nil
	})
}

// checkFields converts and validates everything a check write needs before
// the store is touched
func (s *Service) checkFields(in CheckInput) (dialogue.CheckFields, error) {
	fields, err := in.fields()
	if err != nil {
		return fields, err
	}
	if err := s.requireItem(in.ItemID); err != nil {
		return fields, err
	}
	if err := s.requireTarget(in.FailPageID); err != nil {
		return fields, err
	}
	return fields, nil
}

func (s *Service) actionFields(in ActionInput) (dialogue.ActionFields, error) {
	fields, err := in.fields()
	if err != nil {
		return fields, err
	}
	if err := s.requireItem(in.ItemID); err != nil {
		return fields, err
	}
	if err := s.requireMap(in.MapID); err != nil {
		return fields, err
	}
	return fields, nil
}

func (s *Service) pageDetail(p *dialogue.Page) PageDetail {
	d := PageDetail{
		ID:            p.ID,
		Description:   p.Description,
		DialogKind:    int(p.DialogKind),
		DialogLabel:   Humanize(p.DialogKind.String()),
		Say:           p.Say,
		Arguments:     p.Arguments,
		SuccessPageID: p.SuccessPageID,
		SuccessPage:   s.pageLabel(p.SuccessPageID),
		Checks:        []CheckDetail{},
		Actions:       []ActionDetail{},
		Buttons:       []ButtonDetail{},
		Goods:         []GoodDetail{},
	}
	for _, c := range s.store.ChecksOf(p) {
		d.Checks = append(d.Checks, CheckDetail{
			ID:            c.ID,
			Kind:          int(c.Kind),
			KindLabel:     Humanize(c.Kind.String()),
			Operator:      int(c.Operator),
			OperatorLabel: Humanize(c.Operator.String()),
			StringParam:   c.StringParam,
			IntParam1:     c.IntParam1,
			IntParam2:     c.IntParam2,
			ItemID:        c.ItemID,
			Item:          refLabel(c.ItemID, s.catalog.Name(c.ItemID)),
			FailPageID:    c.FailPageID,
			FailPage:      s.pageLabel(c.FailPageID),
		})
	}
	for _, a := range s.store.ActionsOf(p) {
		d.Actions = append(d.Actions, ActionDetail{
			ID:          a.ID,
			Kind:        int(a.Kind),
			KindLabel:   Humanize(a.Kind.String()),
			StringParam: a.StringParam,
			IntParam1:   a.IntParam1,
			IntParam2:   a.IntParam2,
			ItemID:      a.ItemID,
			Item:        refLabel(a.ItemID, s.catalog.Name(a.ItemID)),
			MapID:       a.MapID,
			Map:         refLabel(a.MapID, s.world.MapName(a.MapID)),
		})
	}
	for _, b := range s.store.ButtonsOf(p) {
		d.Buttons = append(d.Buttons, ButtonDetail{
			ID:                b.ID,
			ButtonID:          b.ButtonID,
			DestinationPageID: b.DestinationPageID,
			DestinationPage:   s.pageLabel(b.DestinationPageID),
		})
	}
	for _, g := range s.store.GoodsOf(p) {
		d.Goods = append(d.Goods, GoodDetail{
			ID:     g.ID,
			ItemID: g.ItemID,
			Item:   refLabel(g.ItemID, s.catalog.Name(g.ItemID)),
			Rate:   g.Rate,
			Cost:   g.Cost,
		})
	}
	return d
}

func (s *Service) pageLabel(id int) string {
	if id == 0 {
		return ""
	}
	p, err := s.resolvePage(id)
	if err != nil {
		return refLabel(id, "")
	}
	return refLabel(p.ID, p.Description)
}
