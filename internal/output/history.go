package output

import (
	"fmt"
	"time"

	"github.com/censys-cli/internal/audit"
	"github.com/dustin/go-humanize"
)

// History writes recorded invocations, newest first
func (r *Renderer) History(entries []*audit.Entry, now time.Time) error {
	if r.format != FormatText {
		if entries == nil {
			entries = []*audit.Entry{}
		}
		raw, err := jsonAPI.Marshal(entries)
		if err != nil {
			return fmt.Errorf("failed to encode history: %w", err)
		}
		return r.structured(raw, nil)
	}

	p := r.p
	p.Heading(fmt.Sprintf("Recent queries (%d)", len(entries)))
	if len(entries) == 0 {
		p.Println("  (no recorded queries)")
		return nil
	}
	for _, e := range entries {
		p.Printf("  %s  %-9s %3d  %s results  %q\n",
			humanize.RelTime(e.CreatedAt, now, "ago", "from now"),
			e.Command,
			e.StatusCode,
			humanize.Comma(int64(e.ResultCount)),
			e.Query,
		)
		if e.Error != "" {
			p.Printf("      error: %s\n", e.Error)
		}
	}
	return nil
}
