package output

import (
	"sort"
	"strconv"
	"strings"

	"github.com/censys-cli/internal/censys"
	"github.com/dustin/go-humanize"
)

// Search writes one page of search results
func (r *Renderer) Search(res *censys.SearchResult) error {
	if r.format != FormatText {
		return r.structured(res.Raw, res)
	}

	p := r.p
	p.Printf("Total matches: %s\n", humanize.Comma(int64(res.TotalHits)))
	p.Printf("Hits returned: %d\n", len(res.Hits))

	for i, hit := range res.Hits {
		p.Printf("[%d] %s\n", i+1, hit.Tag())

		switch h := hit.(type) {
		case *censys.HostHit:
			p.Field(1, "IP", h.Host.IP)
			p.Field(1, "Location", locationSummary(h.Host.Location, false))
			p.Field(1, "Ports", joinPorts(h.Host.Services))
		case *censys.CertificateHit:
			p.Field(1, "Names", joinLimited(h.Certificate.Names, maxListed))
			p.Field(1, "SHA-256", h.Certificate.FingerprintSHA256)
		case *censys.WebPropertyHit:
			p.Field(1, "Name", webPropertyName(h.WebProperty))
			p.Field(1, "Domains", joinLimited(webPropertyDomains(h.WebProperty), maxListed))
		case *censys.UnknownHit:
			p.Println(indentJSON(h.Raw, "  "))
		}
	}

	if next := res.NextPage(); next != "" {
		label := "Next page token"
		if res.NextPageToken == "" {
			label = "Next page"
		}
		p.Printf("%s: %s\n", label, next)
	}
	return nil
}

// joinPorts returns the distinct service ports in ascending order
func joinPorts(services []censys.Service) string {
	seen := make(map[int]struct{}, len(services))
	var ports []int
	for _, s := range services {
		if _, ok := seen[s.Port]; ok {
			continue
		}
		seen[s.Port] = struct{}{}
		ports = append(ports, s.Port)
	}
	sort.Ints(ports)

	out := make([]string, len(ports))
	for i, port := range ports {
		out[i] = strconv.Itoa(port)
	}
	return strings.Join(out, ", ")
}

func webPropertyName(w censys.WebProperty) string {
	if w.Name != "" {
		return w.Name
	}
	if w.Hostname == "" {
		return ""
	}
	if w.Port == 0 {
		return w.Hostname
	}
	return w.Hostname + ":" + strconv.Itoa(w.Port)
}

func webPropertyDomains(w censys.WebProperty) []string {
	if len(w.Domains) > 0 {
		return w.Domains
	}
	if w.Hostname != "" {
		return []string{w.Hostname}
	}
	return nil
}
