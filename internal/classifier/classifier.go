// Package classifier assigns a category label to an item. The agent
// classifier asks an LLM through go-agents; the extension classifier maps
// file extensions through the configured category table.
package classifier

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// Classifier returns exactly one label for an item. The label is free text
// and is not guaranteed to be a member of Request.Labels.
type Classifier interface {
	Classify(ctx context.Context, req Request) (string, error)
}

// Request carries everything a classifier may consider for one item.
type Request struct {
	Item   string
	Signal string
	Labels []string
}

// Category is a label with the file extensions presented alongside it.
type Category struct {
	Name       string   `toml:"name"`
	Extensions []string `toml:"extensions"`
}

// DefaultCategories returns the built-in category table.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Images", Extensions: []string{"png", "jpg", "jpeg"}},
		{Name: "Documents", Extensions: []string{"pdf", "docx", "txt"}},
		{Name: "Others"},
	}
}

// Labels returns the category names in table order.
func Labels(categories []Category) []string {
	labels := make([]string, len(categories))
	for i, c := range categories {
		labels[i] = c.Name
	}
	return labels
}

// Signal derives the lower-cased extension of item without the leading dot.
// Items without an extension yield an empty signal.
func Signal(item string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(item), "."))
}

// NewRequest builds a Request for item against the given categories.
func NewRequest(item string, categories []Category) Request {
	return Request{
		Item:   item,
		Signal: Signal(item),
		Labels: Labels(categories),
	}
}

// Prompt renders the text-completion prompt for a request.
func Prompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("You are a file organizer.\n\n")
	fmt.Fprintf(&sb, "File name: %s\n", req.Item)
	fmt.Fprintf(&sb, "Extension: %s\n\n", req.Signal)
	sb.WriteString("Categories:\n")
	for _, l := range req.Labels {
		fmt.Fprintf(&sb, "- %s\n", l)
	}
	sb.WriteString("\nReturn ONLY the best category name.")
	return sb.String()
}
