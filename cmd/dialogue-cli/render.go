package main

import (
	"fmt"
	"strings"

	"booking-dialogue/internal/conversation"
	"booking-dialogue/internal/dialogue/reply"

	"github.com/charmbracelet/glamour"
)

const wrapWidth = 80

// markdownRenderer renders replies for the terminal. With plain set, or when
// glamour cannot build a renderer, markdown is printed as is.
type markdownRenderer struct {
	term *glamour.TermRenderer
}

func newMarkdownRenderer(plain bool) *markdownRenderer {
	if plain {
		return &markdownRenderer{}
	}
	term, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{term: term}
}

func (r *markdownRenderer) Render(md string) string {
	if r.term == nil {
		return md
	}
	out, err := r.term.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n ")
}

// turnMarkdown lays out a chat response: the reply, follow-up questions,
// the price estimate and the booking reference when one was issued.
func turnMarkdown(resp *conversation.Response) string {
	var sb strings.Builder
	sb.WriteString(resp.Reply)

	// booking summaries already carry the first question
	var extra []string
	for _, c := range resp.Clarifications {
		if !strings.Contains(resp.Reply, c) {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		sb.WriteString("\n\n")
		for _, c := range extra {
			fmt.Fprintf(&sb, "> %s\n", c)
		}
	}
	if resp.Quote != nil && resp.Quote.Price > 0 {
		fmt.Fprintf(&sb, "\n\n_Becsült ár: %s (%d nap)_", reply.FormatHUF(resp.Quote.Price), resp.Quote.Days)
	}
	if resp.BookingID != "" {
		fmt.Fprintf(&sb, "\n\n_Foglalás: %s_", resp.BookingID)
	}
	return strings.TrimRight(sb.String(), "\n")
}
