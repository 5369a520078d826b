// Package view renders glossary entries for the terminal.
package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/jjudge-oj/glossary/types"
)

// DisplayMode selects how much of each entry is shown.
type DisplayMode string

const (
	Compact  DisplayMode = "compact"
	Detailed DisplayMode = "detailed"
)

func ParseDisplayMode(value string) (DisplayMode, error) {
	switch mode := DisplayMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "", Compact:
		return Compact, nil
	case Detailed:
		return Detailed, nil
	default:
		return "", fmt.Errorf("unknown display mode %q", value)
	}
}

// Renderer writes terms and categories in one display mode.
type Renderer struct {
	w    io.Writer
	mode DisplayMode
}

func NewRenderer(w io.Writer, mode DisplayMode) *Renderer {
	if mode == "" {
		mode = Compact
	}
	return &Renderer{w: w, mode: mode}
}

func (r *Renderer) Terms(terms []types.Term) error {
	if len(terms) == 0 {
		_, err := fmt.Fprintln(r.w, "No terms found.")
		return err
	}
	if r.mode == Detailed {
		for i, term := range terms {
			if i > 0 {
				if _, err := fmt.Fprintln(r.w); err != nil {
					return err
				}
			}
			if err := r.Term(term); err != nil {
				return err
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tCATEGORY\tDEFINITION")
	for _, term := range terms {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", term.Word, orDash(term.CategoryName()), truncate(term.Definition, 60))
	}
	return tw.Flush()
}

// Term writes one term in full regardless of mode.
func (r *Renderer) Term(term types.Term) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", term.Word)
	fmt.Fprintf(&b, "  id:         %s\n", term.ID)
	fmt.Fprintf(&b, "  category:   %s\n", orDash(term.CategoryName()))
	fmt.Fprintf(&b, "  definition: %s\n", term.Definition)
	if len(term.Examples) > 0 {
		b.WriteString("  examples:\n")
		for _, example := range term.Examples {
			fmt.Fprintf(&b, "    - %s\n", example)
		}
	}
	if len(term.RelatedTerms) > 0 {
		words := make([]string, 0, len(term.RelatedTerms))
		for _, related := range term.RelatedTerms {
			words = append(words, related.Word)
		}
		fmt.Fprintf(&b, "  related:    %s\n", strings.Join(words, ", "))
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

func (r *Renderer) Categories(categories []types.Category) error {
	if len(categories) == 0 {
		_, err := fmt.Fprintln(r.w, "No categories found.")
		return err
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	if r.mode == Detailed {
		fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
		for _, category := range categories {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", category.ID, category.Name, orDash(category.Description))
		}
		return tw.Flush()
	}

	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, category := range categories {
		fmt.Fprintf(tw, "%s\t%s\n", category.Name, orDash(truncate(category.Description, 60)))
	}
	return tw.Flush()
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-3]) + "..."
}
