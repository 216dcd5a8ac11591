package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Cell class markers used by the campus index and building pages. Matching
// is against the exact class attribute value.
const (
	classBuildingTitle   = "views-field views-field-title"
	classBuildingCode    = "views-field views-field-field-building-code"
	classBuildingAddress = "views-field views-field-field-building-address"
	classHref            = "views-field views-field-nothing"
	classRoomNumber      = "views-field views-field-field-room-number"
	classRoomCapacity    = "views-field views-field-field-room-capacity"
	classRoomFurniture   = "views-field views-field-field-room-furniture"
	classRoomType        = "views-field views-field-field-room-type"
)

// findMarkedTable locates, breadth-first, the first table whose subtree
// contains a td with the given class attribute. The pages carry several
// layout tables; the marker cell is what identifies the data table.
func findMarkedTable(root *html.Node, markerClass string) *html.Node {
	queue := []*html.Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Type == html.ElementNode && node.Data == "table" && tableHasCell(node, markerClass) {
			return node
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			queue = append(queue, child)
		}
	}
	return nil
}

func tableHasCell(table *html.Node, markerClass string) bool {
	queue := []*html.Node{table}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Type == html.ElementNode && node.Data == "td" && attrValue(node, "class") == markerClass {
			return true
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			queue = append(queue, child)
		}
	}
	return false
}

// tableRows returns the tr nodes under a table's tbody, breadth-first.
func tableRows(table *html.Node) []*html.Node {
	var tbody *html.Node
	for child := table.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == "tbody" {
			tbody = child
			break
		}
	}
	if tbody == nil {
		return nil
	}

	var rows []*html.Node
	queue := []*html.Node{tbody}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node.Type == html.ElementNode && node.Data == "tr" {
			rows = append(rows, node)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			queue = append(queue, child)
		}
	}
	return rows
}

func attrValue(node *html.Node, name string) string {
	for _, attr := range node.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// findCell returns the row's td whose class attribute equals class
// exactly, or nil.
func findCell(row *html.Node, class string) *goquery.Selection {
	var found *goquery.Selection
	goquery.NewDocumentFromNode(row).Find("td").EachWithBreak(func(_ int, td *goquery.Selection) bool {
		if attr, _ := td.Attr("class"); attr == class {
			found = td
			return false
		}
		return true
	})
	return found
}

// cellText extracts the trimmed direct text of a cell, ignoring text
// nested in child elements such as anchors.
func cellText(row *html.Node, class string) string {
	td := findCell(row, class)
	if td == nil {
		return ""
	}
	var text string
	td.Contents().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if goquery.NodeName(c) == "#text" {
			if t := strings.TrimSpace(c.Text()); t != "" {
				text = t
				return false
			}
		}
		return true
	})
	return text
}

// cellAnchorText extracts the trimmed text of the first anchor inside a
// cell.
func cellAnchorText(row *html.Node, class string) string {
	td := findCell(row, class)
	if td == nil {
		return ""
	}
	anchor := td.Find("a").First()
	if anchor.Length() == 0 {
		return ""
	}
	return strings.TrimSpace(anchor.Text())
}

// cellAnchorHref extracts the href of the first anchor inside a cell.
func cellAnchorHref(row *html.Node, class string) string {
	td := findCell(row, class)
	if td == nil {
		return ""
	}
	href, _ := td.Find("a").First().Attr("href")
	return href
}
