package memdom

import "strings"

// voidElements are elements that cannot have children and have no closing tag.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// HTMLOptions configures HTML snapshots.
type HTMLOptions struct {
	// Pretty enables indented output, one node per line.
	Pretty bool

	// Indent is the string used for each indentation level in pretty mode.
	// Defaults to two spaces if not specified.
	Indent string
}

// HTML returns the markup of the root's children. Attributes are written in
// insertion order, so equal trees always produce equal snapshots.
func (d *Document) HTML() string {
	return d.RenderHTML(HTMLOptions{})
}

// RenderHTML returns the markup of the root's children using opts.
func (d *Document) RenderHTML(opts HTMLOptions) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.renderLocked(opts)
}

func (d *Document) renderLocked(opts HTMLOptions) string {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	var b strings.Builder
	for _, c := range d.root.children {
		renderNode(&b, c, 0, opts)
	}
	return b.String()
}

func renderNode(b *strings.Builder, n *Node, depth int, opts HTMLOptions) {
	if opts.Pretty {
		b.WriteString(strings.Repeat(opts.Indent, depth))
	}
	if n.IsText() {
		b.WriteString(escapeHTML(n.text))
		if opts.Pretty {
			b.WriteByte('\n')
		}
		return
	}

	b.WriteByte('<')
	b.WriteString(n.tag)
	for _, k := range n.attrKeys {
		v := n.attrs[k]
		b.WriteByte(' ')
		b.WriteString(k)
		if v != "" {
			b.WriteString(`="`)
			b.WriteString(escapeAttr(v))
			b.WriteByte('"')
		}
	}
	b.WriteByte('>')

	if voidElements[n.tag] && len(n.children) == 0 {
		if opts.Pretty {
			b.WriteByte('\n')
		}
		return
	}

	if opts.Pretty && len(n.children) > 0 {
		b.WriteByte('\n')
	}
	for _, c := range n.children {
		renderNode(b, c, depth+1, opts)
	}
	if opts.Pretty && len(n.children) > 0 {
		b.WriteString(strings.Repeat(opts.Indent, depth))
	}
	b.WriteString("</")
	b.WriteString(n.tag)
	b.WriteByte('>')
	if opts.Pretty {
		b.WriteByte('\n')
	}
}
