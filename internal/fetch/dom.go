package fetch

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// эти элементы не несут видимого текста
var strippedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"meta":     true,
	"link":     true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
}

var (
	contentTags    = map[string]bool{"main": true, "article": true}
	contentClasses = map[string]bool{"content": true, "article": true, "post": true, "entry": true}
)

// DOMExtractor берет текст семантических контейнеров (main, article, .content, .article, .post, .entry),
// а если их нет или они пустые - весь body.
type DOMExtractor struct{}

func (DOMExtractor) Extract(body []byte, _ *url.URL) (string, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}

	strip(doc)

	var containers []*html.Node
	collectContainers(doc, &containers)

	var sb strings.Builder
	for _, n := range containers {
		writeText(n, &sb)
		sb.WriteByte(' ')
	}
	if strings.TrimSpace(sb.String()) != "" {
		return sb.String(), nil
	}

	sb.Reset()
	if b := findElement(doc, "body"); b != nil {
		writeText(b, &sb)
	} else {
		writeText(doc, &sb)
	}
	return sb.String(), nil
}

func strip(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && strippedTags[c.Data] {
			n.RemoveChild(c)
		} else {
			strip(c)
		}
		c = next
	}
}

// вложенные контейнеры не собираем, иначе текст задвоится
func collectContainers(n *html.Node, out *[]*html.Node) {
	if n.Type == html.ElementNode && isContainer(n) {
		*out = append(*out, n)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectContainers(c, out)
	}
}

func isContainer(n *html.Node) bool {
	if contentTags[n.Data] {
		return true
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, cls := range strings.Fields(a.Val) {
			if contentClasses[cls] {
				return true
			}
		}
	}
	return false
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// блочные элементы отделяются пробелом, инлайновые склеиваются как есть
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "br": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true, "figure": true,
	"footer": true, "form": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "header": true, "hr": true, "li": true, "main": true,
	"nav": true, "ol": true, "p": true, "pre": true, "section": true, "table": true,
	"tbody": true, "td": true, "tfoot": true, "th": true, "thead": true, "tr": true,
	"ul": true,
}

func writeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		sb.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}
	if block {
		sb.WriteByte(' ')
	}
}
