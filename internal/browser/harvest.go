package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/domdoc"
)

var wireJSON = jsoniter.ConfigCompatibleWithStandardLibrary

const harvestTimeout = 30 * time.Second

// captureScript walks the live DOM from body and serializes it to the wire
// shape below. Each element gets a persistent data-ariadne-id on first
// capture, so the same element reports the same id across re-harvests of
// the same page; that id becomes the node's backend identity on the Go
// side and anchors reference stability.
const captureScript = `(() => {
    let counter = window.__ariadneIdCounter || 0;
    const pseudoText = (el, which) => {
        const content = window.getComputedStyle(el, which).content;
        if (!content || content === 'none' || content === 'normal') return '';
        if (content.length >= 2 && content[0] === '"' && content[content.length - 1] === '"') {
            try { return JSON.parse(content); } catch (e) { return ''; }
        }
        return '';
    };
    const capture = (node) => {
        if (node.nodeType === Node.TEXT_NODE) {
            return node.nodeValue ? { text: node.nodeValue } : null;
        }
        if (node.nodeType !== Node.ELEMENT_NODE) return null;
        const el = node;
        if (!el.dataset.ariadneId) el.dataset.ariadneId = String(++counter);
        const style = window.getComputedStyle(el);
        const rect = el.getBoundingClientRect();
        const attrs = {};
        for (const a of el.attributes) attrs[a.name] = a.value;
        const out = {
            tag: el.tagName.toLowerCase(),
            id: Number(el.dataset.ariadneId),
            attrs: attrs,
            box: {
                visible: style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0,
                cursor: style.cursor,
                pointerEvents: style.pointerEvents !== 'none'
            },
            before: pseudoText(el, '::before'),
            after: pseudoText(el, '::after')
        };
        for (const child of el.childNodes) {
            const c = capture(child);
            if (c) (out.children = out.children || []).push(c);
        }
        if (el.shadowRoot) {
            for (const child of el.shadowRoot.childNodes) {
                const c = capture(child);
                if (c) (out.shadow = out.shadow || []).push(c);
            }
        }
        return out;
    };
    const root = capture(document.body);
    window.__ariadneIdCounter = counter;
    return root;
})()`

// wireNode mirrors the capture script's output.
type wireNode struct {
	Tag      string            `json:"tag"`
	ID       int64             `json:"id"`
	Text     string            `json:"text"`
	Attrs    map[string]string `json:"attrs"`
	Box      wireBox           `json:"box"`
	Before   string            `json:"before"`
	After    string            `json:"after"`
	Children []*wireNode       `json:"children"`
	Shadow   []*wireNode       `json:"shadow"`
}

type wireBox struct {
	Visible       bool   `json:"visible"`
	Cursor        string `json:"cursor"`
	PointerEvents bool   `json:"pointerEvents"`
}

// Harvest captures the current page into the document model. The returned
// document's root is the body element.
func (s *Session) Harvest(ctx context.Context) (*domdoc.Document, error) {
	opCtx, cancel := context.WithTimeout(ctx, harvestTimeout)
	defer cancel()

	var raw []byte
	err := s.Run(opCtx,
		chromedp.Evaluate(captureScript, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithReturnByValue(true).WithSilent(true)
		}),
	)
	if err != nil {
		if opCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("timeout harvesting page: %w", opCtx.Err())
		}
		return nil, fmt.Errorf("failed to harvest page: %w", err)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("harvest returned no document")
	}

	var wire wireNode
	if err := wireJSON.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode harvested document: %w", err)
	}

	root := convertWire(&wire)
	domdoc.AssignSlots(root)
	doc := domdoc.NewDocument(root)
	s.logger.Debug("Harvested document.", zap.Int("bytes", len(raw)))
	return doc, nil
}

func convertWire(w *wireNode) *domdoc.Node {
	if w.Tag == "" {
		return &domdoc.Node{Type: domdoc.TextNode, Text: w.Text}
	}
	n := &domdoc.Node{
		Type:      domdoc.ElementNode,
		Tag:       strings.ToLower(w.Tag),
		Attrs:     w.Attrs,
		Before:    w.Before,
		After:     w.After,
		BackendID: w.ID,
		Box: domdoc.Box{
			Visible:               w.Box.Visible,
			Cursor:                w.Box.Cursor,
			ReceivesPointerEvents: w.Box.PointerEvents,
		},
	}
	if n.Attrs == nil {
		n.Attrs = map[string]string{}
	}
	for _, c := range w.Children {
		n.AppendChild(convertWire(c))
	}
	if len(w.Shadow) > 0 {
		shadow := &domdoc.Node{Type: domdoc.ElementNode, Tag: "#shadow-root", Attrs: map[string]string{}, Box: n.Box}
		for _, c := range w.Shadow {
			shadow.AppendChild(convertWire(c))
		}
		n.ShadowRoot = shadow
	}
	return n
}
