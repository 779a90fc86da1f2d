package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/censys-cli/internal/censys"
)

// maxListed caps how many domains or names are shown per list
const maxListed = 5

// Host writes a host lookup result
func (r *Renderer) Host(h *censys.Host) error {
	if r.format != FormatText {
		return r.structured(h.Raw, h)
	}

	p := r.p
	p.Field(0, "IP", h.IP)
	p.Field(0, "Location", locationSummary(h.Location, true))

	var timezone string
	if h.Location != nil {
		timezone = h.Location.Timezone
	}
	p.Field(0, "Timezone", timezone)
	if h.Location != nil && h.Location.Coordinates != nil {
		c := h.Location.Coordinates
		p.Printf("Coordinates: %s, %s\n", formatFloat(c.Latitude), formatFloat(c.Longitude))
	}

	as := h.AutonomousSystem
	if as == nil {
		as = &censys.AutonomousSystem{}
	}
	p.Heading("Autonomous System")
	p.Field(1, "ASN", formatASN(as.ASN))
	p.Field(1, "Name", as.Name)
	p.Field(1, "Description", as.Description)
	p.Field(1, "Prefix", as.BGPPrefix)
	p.Field(1, "Country", as.CountryCode)

	org := &censys.Organization{}
	if h.Whois != nil && h.Whois.Organization != nil {
		org = h.Whois.Organization
	}
	p.Heading("WHOIS Organization")
	p.Field(1, "Name", org.Name)
	p.Field(1, "Address", org.Address())
	p.Field(1, "Abuse Email", org.AbuseEmail())

	p.Heading(fmt.Sprintf("Services (%d)", len(h.Services)))
	if len(h.Services) == 0 {
		p.Println("  (no services)")
	}
	for _, s := range h.Services {
		p.Printf("  - %d/%s (%s)\n", s.Port, orPlaceholder(s.Protocol), orPlaceholder(s.TransportProtocol))
	}

	dns := h.DNS
	if dns == nil {
		dns = &censys.DNS{}
	}
	var reverse []string
	if dns.ReverseDNS != nil {
		reverse = dns.ReverseDNS.Names
	}
	p.Heading("DNS")
	p.Field(1, "Reverse DNS", strings.Join(reverse, ", "))
	p.Printf("  Forward Domains: %d\n", len(dns.Names))
	for i, name := range dns.Names {
		if i == maxListed {
			p.Printf("    +%d more\n", len(dns.Names)-maxListed)
			break
		}
		p.Printf("    - %s\n", name)
	}

	return nil
}

// locationSummary joins the known location parts with " / "
func locationSummary(loc *censys.Location, withProvince bool) string {
	if loc == nil {
		return ""
	}
	parts := []string{loc.Country}
	if withProvince {
		parts = append(parts, loc.Province)
	}
	parts = append(parts, loc.City)

	var present []string
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			present = append(present, part)
		}
	}
	return strings.Join(present, " / ")
}

func formatASN(asn int) string {
	if asn == 0 {
		return ""
	}
	return strconv.Itoa(asn)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
