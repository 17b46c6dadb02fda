package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/api/schemas"
	"github.com/kalyptra/ariadne/internal/resolve"
)

const actionTimeout = 20 * time.Second

// namedKeys maps the key names callers send to the CDP key codes chromedp
// expects. Single characters pass through unchanged.
var namedKeys = map[string]string{
	"enter":      kb.Enter,
	"tab":        kb.Tab,
	"escape":     kb.Escape,
	"backspace":  kb.Backspace,
	"delete":     kb.Delete,
	"arrowup":    kb.ArrowUp,
	"arrowdown":  kb.ArrowDown,
	"arrowleft":  kb.ArrowLeft,
	"arrowright": kb.ArrowRight,
	"home":       kb.Home,
	"end":        kb.End,
	"pageup":     kb.PageUp,
	"pagedown":   kb.PageDown,
}

// Executors builds the dispatch table the resolution engine injects. Every
// executor addresses its target via the data-ariadne-ref attribute the
// snapshotter wrote.
func Executors(s *Session, logger *zap.Logger) resolve.ExecutorTable {
	e := &executorSet{session: s, logger: logger.Named("actions")}
	return resolve.ExecutorTable{
		schemas.ActionClick:        e.click,
		schemas.ActionTypeText:     e.typeText,
		schemas.ActionPressKey:     e.pressKey,
		schemas.ActionHover:        e.hover,
		schemas.ActionSelectOption: e.selectOption,
		schemas.ActionDrag:         e.drag,
		schemas.ActionFileUpload:   e.fileUpload,
	}
}

type executorSet struct {
	session *Session
	logger  *zap.Logger
}

func refSelector(ref string) string {
	return fmt.Sprintf(`[data-ariadne-ref=%q]`, ref)
}

func (e *executorSet) run(ctx context.Context, label string, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	err := e.session.Run(opCtx, actions...)
	if err != nil && opCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("action %q timed out after %v: %w", label, actionTimeout, opCtx.Err())
	}
	return err
}

func (e *executorSet) click(ctx context.Context, label, ref string, _ resolve.ActionParams) error {
	e.logger.Debug("Clicking.", zap.String("ref", ref))
	return e.run(ctx, label, chromedp.Click(refSelector(ref), chromedp.ByQuery))
}

func (e *executorSet) typeText(ctx context.Context, label, ref string, p resolve.ActionParams) error {
	sel := refSelector(ref)
	e.logger.Debug("Typing.", zap.String("ref", ref), zap.Int("chars", len(p.Text)))
	return e.run(ctx, label,
		chromedp.Focus(sel, chromedp.ByQuery),
		chromedp.SetValue(sel, "", chromedp.ByQuery),
		chromedp.SendKeys(sel, p.Text, chromedp.ByQuery),
	)
}

func (e *executorSet) pressKey(ctx context.Context, label, ref string, p resolve.ActionParams) error {
	if p.Key == "" {
		return fmt.Errorf("press_key requires a key")
	}
	key := p.Key
	if mapped, ok := namedKeys[strings.ToLower(key)]; ok {
		key = mapped
	}
	e.logger.Debug("Pressing key.", zap.String("ref", ref), zap.String("key", p.Key))
	return e.run(ctx, label,
		chromedp.Focus(refSelector(ref), chromedp.ByQuery),
		chromedp.KeyEvent(key),
	)
}

func (e *executorSet) hover(ctx context.Context, label, ref string, _ resolve.ActionParams) error {
	x, y, err := e.center(ctx, ref)
	if err != nil {
		return err
	}
	e.logger.Debug("Hovering.", zap.String("ref", ref))
	return e.run(ctx, label,
		chromedp.ActionFunc(func(c context.Context) error {
			return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(c)
		}),
	)
}

func (e *executorSet) selectOption(ctx context.Context, label, ref string, p resolve.ActionParams) error {
	if len(p.Values) == 0 {
		return fmt.Errorf("select_option requires at least one value")
	}
	encoded, err := wireJSON.Marshal(p.Values)
	if err != nil {
		return err
	}
	// Options match on value attribute first, then visible text. A change
	// event is dispatched so framework listeners observe the selection.
	script := fmt.Sprintf(`((sel, values) => {
        const el = document.querySelector(sel);
        if (!el || el.tagName !== 'SELECT') return false;
        const wanted = new Set(values);
        let matched = false;
        for (const opt of el.options) {
            const hit = wanted.has(opt.value) || wanted.has(opt.textContent.trim());
            opt.selected = hit ? true : (el.multiple ? opt.selected && !matched : false);
            if (hit) matched = true;
        }
        if (matched) el.dispatchEvent(new Event('change', { bubbles: true }));
        return matched;
    })(%q, %s)`, refSelector(ref), encoded)

	var matched bool
	err = e.run(ctx, label,
		chromedp.Evaluate(script, &matched, func(pr *runtime.EvaluateParams) *runtime.EvaluateParams {
			return pr.WithReturnByValue(true).WithSilent(true)
		}),
	)
	if err != nil {
		return err
	}
	if !matched {
		return fmt.Errorf("no option matched %v on %s", p.Values, ref)
	}
	e.logger.Debug("Selected options.", zap.String("ref", ref), zap.Strings("values", p.Values))
	return nil
}

// drag moves the mouse from the source center to the target center in a few
// interpolated steps so drag handlers that watch mousemove fire.
func (e *executorSet) drag(ctx context.Context, label, ref string, p resolve.ActionParams) error {
	if p.SecondRef == "" {
		return fmt.Errorf("drag requires a resolved drop target")
	}
	sx, sy, err := e.center(ctx, ref)
	if err != nil {
		return fmt.Errorf("drag source: %w", err)
	}
	tx, ty, err := e.center(ctx, p.SecondRef)
	if err != nil {
		return fmt.Errorf("drag target: %w", err)
	}
	e.logger.Debug("Dragging.", zap.String("from", ref), zap.String("to", p.SecondRef))

	const steps = 8
	return e.run(ctx, label, chromedp.ActionFunc(func(c context.Context) error {
		if err := input.DispatchMouseEvent(input.MouseMoved, sx, sy).Do(c); err != nil {
			return err
		}
		if err := input.DispatchMouseEvent(input.MousePressed, sx, sy).
			WithButton(input.Left).WithClickCount(1).Do(c); err != nil {
			return err
		}
		for i := 1; i <= steps; i++ {
			f := float64(i) / steps
			x := sx + (tx-sx)*f
			y := sy + (ty-sy)*f
			if err := input.DispatchMouseEvent(input.MouseMoved, x, y).
				WithButton(input.Left).WithButtons(1).Do(c); err != nil {
				return err
			}
		}
		return input.DispatchMouseEvent(input.MouseReleased, tx, ty).
			WithButton(input.Left).WithClickCount(1).Do(c)
	}))
}

func (e *executorSet) fileUpload(ctx context.Context, label, ref string, p resolve.ActionParams) error {
	if len(p.Files) == 0 {
		return fmt.Errorf("file_upload requires at least one file path")
	}
	e.logger.Debug("Uploading files.", zap.String("ref", ref), zap.Strings("files", p.Files))
	return e.run(ctx, label,
		chromedp.SetUploadFiles(refSelector(ref), p.Files, chromedp.ByQuery),
	)
}

// center evaluates the element's border-box center in viewport coordinates.
func (e *executorSet) center(ctx context.Context, ref string) (x, y float64, err error) {
	script := fmt.Sprintf(`((sel) => {
        const el = document.querySelector(sel);
        if (!el) return null;
        const r = el.getBoundingClientRect();
        if (r.width <= 0 || r.height <= 0) return null;
        return { x: r.left + r.width / 2, y: r.top + r.height / 2 };
    })(%q)`, refSelector(ref))

	var point *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	err = e.run(ctx, "geometry",
		chromedp.Evaluate(script, &point, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithSilent(true)
		}),
	)
	if err != nil {
		return 0, 0, err
	}
	if point == nil {
		return 0, 0, fmt.Errorf("element %s not found or not visible", ref)
	}
	return point.X, point.Y, nil
}
