package prompt

import (
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

// draft is a prompt under construction. Only history, rows and the context
// block may shrink; head carries the query and is never cut.
type draft struct {
	head          string
	staticContext string
	context       func([]dataset.Row) string
	rows          []dataset.Row
	mid           string
	history       []Turn
	tail          string

	clipped *string
	trunc   Truncation
}

func (d *draft) contextText() string {
	if d.clipped != nil {
		return *d.clipped
	}
	if d.context != nil {
		return d.context(d.rows)
	}
	return d.staticContext
}

func (d *draft) renderWith(ctx string) string {
	return d.head + ctx + d.mid + renderHistory(d.history) + d.tail
}

func (d *draft) render() string { return d.renderWith(d.contextText()) }

func (d *draft) over(max int) bool { return utils.CountTokens(d.render()) > max }

// fit shrinks the draft until it is within max tokens: oldest history first,
// then trailing rows, then the context block itself.
func (d *draft) fit(max int) {
	if max <= 0 {
		return
	}
	for len(d.history) > 0 && d.over(max) {
		d.history = d.history[1:]
		d.trunc.HistoryDropped++
	}
	for len(d.rows) > 0 && d.over(max) {
		d.rows = d.rows[:len(d.rows)-1]
		d.trunc.RowsDropped++
	}
	if d.over(max) {
		ctx := d.contextText()
		budget := max - utils.CountTokens(d.renderWith(""))
		clipped := utils.TruncateToTokenLimit(ctx, budget)
		if clipped != ctx {
			d.clipped = &clipped
			d.trunc.ContextClipped = true
		}
	}
	d.trunc.OverCap = d.over(max)
	d.trunc.Applied = d.trunc.HistoryDropped > 0 || d.trunc.RowsDropped > 0 || d.trunc.ContextClipped
}
