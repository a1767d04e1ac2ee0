package vdom

import "strings"

// voidElements are elements that cannot have children.
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

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

type selfClosing struct{}

// SelfClosing marks an element built with El as self-closing. Void elements
// are self-closing without it.
var SelfClosing = selfClosing{}

// El creates an element with the given tag and arguments.
// Arguments can be: nil, Attr, []Attr, Node, []Node, string, EventHandler,
// []EventHandler or SelfClosing. Class attributes are joined into the
// element class. Several children are wrapped in a positional List.
func El(tag string, args ...any) *ElementNode {
	var (
		classes  []string
		attrs    []Attr
		children []Node
		events   []EventHandler
		closing  = voidElements[tag]
	)

	addAttr := func(a Attr) {
		if a.IsEmpty() {
			return
		}
		if a.Key == "class" {
			if s, ok := a.Value.(string); ok && s != "" {
				classes = append(classes, s)
			}
			return
		}
		attrs = append(attrs, a)
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			// Ignore nil (allows conditional arguments)
			continue

		case Attr:
			addAttr(v)

		case []Attr:
			for _, a := range v {
				addAttr(a)
			}

		case string:
			// Shorthand for text node
			children = append(children, Text(v))

		case Node:
			if !isNilNode(v) {
				children = append(children, v)
			}

		case []Node:
			for _, c := range v {
				if !isNilNode(c) {
					children = append(children, c)
				}
			}

		case EventHandler:
			events = append(events, v)

		case []EventHandler:
			events = append(events, v...)

		case selfClosing:
			closing = true
		}
	}

	var child Node
	switch len(children) {
	case 0:
	case 1:
		child = children[0]
	default:
		child = List(children...)
	}

	el := NewElement(tag, strings.Join(classes, " "), NewAttributes(attrs...), child, closing)
	if len(events) > 0 {
		el.SetEvents(events...)
	}
	return el
}

// isNilNode reports whether n is nil or a typed nil pointer.
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case nil:
		return true
	case *TextNode:
		return v == nil
	case *ElementNode:
		return v == nil
	case *ListNode:
		return v == nil
	case *ComponentNode:
		return v == nil
	}
	return false
}

// Document structure elements

func Html(args ...any) *ElementNode  { return El("html", args...) }
func Head(args ...any) *ElementNode  { return El("head", args...) }
func Body(args ...any) *ElementNode  { return El("body", args...) }
func Title(args ...any) *ElementNode { return El("title", args...) }
func Meta(args ...any) *ElementNode  { return El("meta", args...) }
func Link(args ...any) *ElementNode  { return El("link", args...) }

// Sectioning elements

func Header(args ...any) *ElementNode  { return El("header", args...) }
func Footer(args ...any) *ElementNode  { return El("footer", args...) }
func Main(args ...any) *ElementNode    { return El("main", args...) }
func Nav(args ...any) *ElementNode     { return El("nav", args...) }
func Section(args ...any) *ElementNode { return El("section", args...) }
func Article(args ...any) *ElementNode { return El("article", args...) }
func Aside(args ...any) *ElementNode   { return El("aside", args...) }
func H1(args ...any) *ElementNode      { return El("h1", args...) }
func H2(args ...any) *ElementNode      { return El("h2", args...) }
func H3(args ...any) *ElementNode      { return El("h3", args...) }

// Grouping elements

func Div(args ...any) *ElementNode  { return El("div", args...) }
func P(args ...any) *ElementNode    { return El("p", args...) }
func Span(args ...any) *ElementNode { return El("span", args...) }
func Pre(args ...any) *ElementNode  { return El("pre", args...) }
func Ul(args ...any) *ElementNode   { return El("ul", args...) }
func Ol(args ...any) *ElementNode   { return El("ol", args...) }
func Li(args ...any) *ElementNode   { return El("li", args...) }
func Hr(args ...any) *ElementNode   { return El("hr", args...) }

// Text-level elements

func A(args ...any) *ElementNode      { return El("a", args...) }
func Strong(args ...any) *ElementNode { return El("strong", args...) }
func Em(args ...any) *ElementNode     { return El("em", args...) }
func Code(args ...any) *ElementNode   { return El("code", args...) }
func Small(args ...any) *ElementNode  { return El("small", args...) }
func Br(args ...any) *ElementNode     { return El("br", args...) }

// Form elements

func Form(args ...any) *ElementNode     { return El("form", args...) }
func Input(args ...any) *ElementNode    { return El("input", args...) }
func Textarea(args ...any) *ElementNode { return El("textarea", args...) }
func Select(args ...any) *ElementNode   { return El("select", args...) }
func Button(args ...any) *ElementNode   { return El("button", args...) }
func Label(args ...any) *ElementNode    { return El("label", args...) }

// Table elements

func Table(args ...any) *ElementNode { return El("table", args...) }
func Thead(args ...any) *ElementNode { return El("thead", args...) }
func Tbody(args ...any) *ElementNode { return El("tbody", args...) }
func Tr(args ...any) *ElementNode    { return El("tr", args...) }
func Th(args ...any) *ElementNode    { return El("th", args...) }
func Td(args ...any) *ElementNode    { return El("td", args...) }

// Media elements

func Img(args ...any) *ElementNode { return El("img", args...) }
