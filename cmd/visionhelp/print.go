package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"visionhelp/internal/content"
)

var (
	titleStyle   = color.New(color.Bold).SprintFunc()
	sectionStyle = color.New(color.FgCyan).SprintFunc()
	dimStyle     = color.New(color.FgHiBlack).SprintFunc()
	warnStyle    = color.New(color.FgYellow).SprintFunc()
	linkStyle    = color.New(color.FgBlue).SprintFunc()
)

func printDocument(out io.Writer, key string, doc *content.Document) {
	fmt.Fprintf(out, "%s", titleStyle(doc.Title))
	if doc.Badge != "" {
		fmt.Fprintf(out, " [%s]", doc.Badge)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s\n\n", dimStyle(key))

	if doc.Metadata.IsFallback {
		fmt.Fprintf(out, "%s\n\n", warnStyle("(no stored content for this context, showing generated fallback)"))
	}

	for _, section := range doc.Sections {
		fmt.Fprintf(out, "%s\n", sectionStyle(section.Title))
		fmt.Fprintf(out, "  %s\n", section.Content)
		for _, item := range section.Items {
			fmt.Fprintf(out, "  - %s\n", item)
		}
		fmt.Fprintln(out)
	}

	for _, action := range doc.Actions {
		if action.URL != "" {
			fmt.Fprintf(out, "%s %s\n", action.Label, linkStyle(action.URL))
		} else {
			fmt.Fprintf(out, "%s\n", action.Label)
		}
	}

	if len(doc.RelatedTopics) > 0 {
		fmt.Fprintf(out, "\n%s\n", sectionStyle("Related Topics"))
		for _, topic := range doc.RelatedTopics {
			fmt.Fprintf(out, "  %s %s\n", topic.Title, linkStyle(topic.URL))
		}
	}
}

func printTooltip(out io.Writer, tip *content.Tooltip) {
	fmt.Fprintf(out, "%s\n", titleStyle(tip.Title))
	fmt.Fprintf(out, "%s\n", tip.Content)
	if tip.RoleContent != "" {
		fmt.Fprintf(out, "%s %s\n", sectionStyle(tip.CurrentRole+":"), tip.RoleContent)
	}
	if tip.Calculation != "" {
		fmt.Fprintf(out, "%s %s\n", dimStyle("calculation:"), tip.Calculation)
	}
	if tip.SLA != "" {
		fmt.Fprintf(out, "%s %s\n", dimStyle("sla:"), tip.SLA)
	}
	if tip.IsFallback {
		fmt.Fprintf(out, "%s\n", warnStyle("(generated fallback)"))
	}
}
