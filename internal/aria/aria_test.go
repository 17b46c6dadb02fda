package aria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/domdoc"
)

func oracleFor(t *testing.T, source string) (*Oracle, *domdoc.Document) {
	t.Helper()
	doc, err := domdoc.Parse(source)
	require.NoError(t, err)
	return New(doc), doc
}

func TestRole(t *testing.T) {
	tests := []struct {
		name   string
		source string
		id     string
		want   string
	}{
		{"explicit role wins", `<div><div id="x" role="tab">t</div></div>`, "x", "tab"},
		{"first token of a role list", `<div><div id="x" role="switch button">t</div></div>`, "x", "switch"},
		{"button tag", `<div><button id="x">Go</button></div>`, "x", "button"},
		{"anchor with href is a link", `<div><a id="x" href="/y">y</a></div>`, "x", "link"},
		{"anchor without href is generic", `<div><a id="x">y</a></div>`, "x", ""},
		{"input defaults to textbox", `<div><input id="x"></div>`, "x", "textbox"},
		{"checkbox input", `<div><input id="x" type="checkbox"></div>`, "x", "checkbox"},
		{"range input is a slider", `<div><input id="x" type="range"></div>`, "x", "slider"},
		{"hidden input has no role", `<div><input id="x" type="hidden"></div>`, "x", ""},
		{"select is a combobox", `<div><select id="x"></select></div>`, "x", "combobox"},
		{"multiple select is a listbox", `<div><select id="x" multiple></select></div>`, "x", "listbox"},
		{"sized select is a listbox", `<div><select id="x" size="4"></select></div>`, "x", "listbox"},
		{"img with alt", `<div><img id="x" alt="Logo"></div>`, "x", "img"},
		{"img with empty alt is presentational", `<div><img id="x" alt=""></div>`, "x", "presentation"},
		{"heading tag", `<div><h3 id="x">t</h3></div>`, "x", "heading"},
		{"unknown tag is generic", `<div><custom-el id="x">t</custom-el></div>`, "x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, doc := oracleFor(t, tt.source)
			n := doc.ByID(tt.id)
			require.NotNil(t, n)
			assert.Equal(t, tt.want, o.Role(n))
		})
	}
}

func TestName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		id     string
		want   string
	}{
		{
			"aria-label wins over content",
			`<div><button id="x" aria-label="Close dialog">X</button></div>`,
			"x", "Close dialog",
		},
		{
			"aria-labelledby joins referenced subtrees",
			`<div><span id="a">Billing</span> <span id="b">address</span>
			 <input id="x" aria-labelledby="a b"></div>`,
			"x", "Billing address",
		},
		{
			"label-for association",
			`<div><label for="x">Email</label><input id="x"></div>`,
			"x", "Email",
		},
		{
			"content naming for buttons",
			`<div><button id="x">  Save   draft </button></div>`,
			"x", "Save draft",
		},
		{
			"value naming for submit inputs",
			`<div><input id="x" type="submit" value="Send"></div>`,
			"x", "Send",
		},
		{
			"placeholder fallback for text inputs",
			`<div><input id="x" placeholder="Search…"></div>`,
			"x", "Search…",
		},
		{
			"alt naming for images",
			`<div><img id="x" alt="Company logo"></div>`,
			"x", "Company logo",
		},
		{
			"title as the last resort",
			`<div><div id="x" title="Tooltip">body text</div></div>`,
			"x", "Tooltip",
		},
		{
			"aria-hidden subtrees excluded from content names",
			`<div><button id="x"><span aria-hidden="true">★</span>Favorite</button></div>`,
			"x", "Favorite",
		},
		{
			"generated content participates in names",
			`<div><button id="x"><span data-before="→ ">Go</span></button></div>`,
			"x", "→ Go",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, doc := oracleFor(t, tt.source)
			n := doc.ByID(tt.id)
			require.NotNil(t, n)
			assert.Equal(t, tt.want, o.Name(n))
		})
	}
}

func TestState(t *testing.T) {
	t.Run("checked", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<input id="on" type="checkbox" checked>
				<input id="off" type="checkbox">
				<div id="mixed" role="checkbox" aria-checked="mixed">m</div>
				<button id="plain">p</button>
			</div>`)

		assert.Equal(t, axtree.TriTrue, o.State(doc.ByID("on")).Checked)
		assert.Equal(t, axtree.TriFalse, o.State(doc.ByID("off")).Checked)
		assert.Equal(t, axtree.TriMixed, o.State(doc.ByID("mixed")).Checked)
		assert.Equal(t, axtree.TriUnset, o.State(doc.ByID("plain")).Checked)
	})

	t.Run("disabled", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<button id="attr" disabled>a</button>
				<button id="aria" aria-disabled="true">b</button>
				<button id="no">c</button>
			</div>`)

		assert.True(t, o.State(doc.ByID("attr")).Disabled)
		assert.True(t, o.State(doc.ByID("aria")).Disabled)
		assert.False(t, o.State(doc.ByID("no")).Disabled)
	})

	t.Run("expanded", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<button id="open" aria-expanded="true">a</button>
				<button id="closed" aria-expanded="false">b</button>
				<button id="unset">c</button>
				<details id="details" open><summary id="summary">d</summary></details>
			</div>`)

		open := o.State(doc.ByID("open")).Expanded
		require.NotNil(t, open)
		assert.True(t, *open)

		closed := o.State(doc.ByID("closed")).Expanded
		require.NotNil(t, closed)
		assert.False(t, *closed)

		assert.Nil(t, o.State(doc.ByID("unset")).Expanded)

		summary := o.State(doc.ByID("summary")).Expanded
		require.NotNil(t, summary)
		assert.True(t, *summary)
	})

	t.Run("selected", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<div id="tab" role="tab" aria-selected="true">t</div>
				<select><option id="opt" selected>o</option></select>
			</div>`)

		tab := o.State(doc.ByID("tab")).Selected
		require.NotNil(t, tab)
		assert.True(t, *tab)

		opt := o.State(doc.ByID("opt")).Selected
		require.NotNil(t, opt)
		assert.True(t, *opt)
	})

	t.Run("level", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<h4 id="h">x</h4>
				<div id="custom" role="heading" aria-level="7">y</div>
				<div id="bad" role="heading" aria-level="two">z</div>
			</div>`)

		assert.Equal(t, 4, o.State(doc.ByID("h")).Level)
		assert.Equal(t, 7, o.State(doc.ByID("custom")).Level)
		assert.Equal(t, 0, o.State(doc.ByID("bad")).Level)
	})

	t.Run("pressed", func(t *testing.T) {
		o, doc := oracleFor(t, `
			<div>
				<button id="on" aria-pressed="true">a</button>
				<button id="off" aria-pressed="false">b</button>
				<button id="unset">c</button>
			</div>`)

		assert.Equal(t, axtree.TriTrue, o.State(doc.ByID("on")).Pressed)
		assert.Equal(t, axtree.TriFalse, o.State(doc.ByID("off")).Pressed)
		assert.Equal(t, axtree.TriUnset, o.State(doc.ByID("unset")).Pressed)
	})
}

func TestValue(t *testing.T) {
	o, doc := oracleFor(t, `
		<div>
			<input id="in" value="typed">
			<textarea id="ta">  multi line  </textarea>
			<button id="btn">x</button>
		</div>`)

	assert.Equal(t, "typed", o.Value(doc.ByID("in")))
	assert.Equal(t, "multi line", o.Value(doc.ByID("ta")))
	assert.Empty(t, o.Value(doc.ByID("btn")))
}

func TestVisibility(t *testing.T) {
	o, doc := oracleFor(t, `
		<div>
			<p id="ariahidden" aria-hidden="true">a</p>
			<p id="invisible" style="visibility:hidden">b</p>
			<p id="shown">c</p>
			<p id="inert" style="pointer-events:none">d</p>
		</div>`)

	assert.True(t, o.HiddenForAria(doc.ByID("ariahidden")))
	assert.True(t, o.HiddenForAria(doc.ByID("invisible")))
	assert.False(t, o.HiddenForAria(doc.ByID("shown")))

	assert.True(t, o.ReceivesPointer(doc.ByID("shown")))
	assert.False(t, o.ReceivesPointer(doc.ByID("inert")))
}
