package output

import (
	"github.com/censys-cli/internal/censys"
	"github.com/dustin/go-humanize"
)

// Aggregate writes the buckets of an aggregation over field
func (r *Renderer) Aggregate(field string, res *censys.AggregateResult) error {
	if r.format != FormatText {
		return r.structured(res.Raw, res)
	}

	p := r.p
	p.Printf("Aggregate of %s\n", field)
	if res.TotalCount != nil {
		p.Printf("Total: %s\n", humanize.Comma(int64(*res.TotalCount)))
	}
	if len(res.Buckets) == 0 {
		p.Println("  (no buckets)")
		return nil
	}
	for _, b := range res.Buckets {
		p.Printf("  %s: %s\n", b.Label(), humanize.Comma(int64(b.Count)))
	}
	return nil
}
