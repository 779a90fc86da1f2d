package censys

import (
	"encoding/json"
	"regexp"
	"sort"
)

// Hit is one search result. Exactly one of HostHit, CertificateHit,
// WebPropertyHit or UnknownHit.
type Hit interface {
	// Tag names the asset type of the hit
	Tag() string
	isHit()
}

// HostHit is a search hit carrying a host
type HostHit struct {
	Key  string
	Host Host
}

// CertificateHit is a search hit carrying a certificate
type CertificateHit struct {
	Key         string
	Certificate Certificate
}

// WebPropertyHit is a search hit carrying a web property
type WebPropertyHit struct {
	Key         string
	WebProperty WebProperty
}

// UnknownHit is a search hit with no recognizable asset payload
type UnknownHit struct {
	Raw json.RawMessage
}

func (*HostHit) Tag() string        { return "host" }
func (*CertificateHit) Tag() string { return "certificate" }
func (*WebPropertyHit) Tag() string { return "webproperty" }
func (*UnknownHit) Tag() string     { return "unknown" }

func (*HostHit) isHit()        {}
func (*CertificateHit) isHit() {}
func (*WebPropertyHit) isHit() {}
func (*UnknownHit) isHit()     {}

// versionedKey matches asset payload keys such as host_v1 or webproperty_v1
var versionedKey = regexp.MustCompile(`^([a-z_]+?)_v(\d+)$`)

// ParseHit picks the versioned asset payload out of a raw hit. Hits with no
// payload of a known type become an UnknownHit holding the raw object.
func ParseHit(raw json.RawMessage) Hit {
	var fields map[string]json.RawMessage
	if err := jsonAPI.Unmarshal(raw, &fields); err != nil {
		return &UnknownHit{Raw: raw}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		m := versionedKey.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		payload := unwrapResource(fields[key])

		switch m[1] {
		case "host":
			var h Host
			if err := jsonAPI.Unmarshal(payload, &h); err == nil {
				h.Raw = payload
				return &HostHit{Key: key, Host: h}
			}
		case "certificate", "cert":
			var c Certificate
			if err := jsonAPI.Unmarshal(payload, &c); err == nil {
				return &CertificateHit{Key: key, Certificate: c}
			}
		case "webproperty", "web":
			var w WebProperty
			if err := jsonAPI.Unmarshal(payload, &w); err == nil {
				return &WebPropertyHit{Key: key, WebProperty: w}
			}
		}
	}

	return &UnknownHit{Raw: raw}
}

// searchPayload is the wire shape of a search page
type searchPayload struct {
	TotalHits     float64           `json:"total_hits"`
	Hits          []json.RawMessage `json:"hits"`
	NextPageToken string            `json:"next_page_token"`
	Links         *Links            `json:"links"`
}

func decodeSearch(payload json.RawMessage) (*SearchResult, error) {
	var p searchPayload
	if err := jsonAPI.Unmarshal(payload, &p); err != nil {
		return nil, err
	}

	result := &SearchResult{
		TotalHits:     p.TotalHits,
		Hits:          make([]Hit, 0, len(p.Hits)),
		NextPageToken: p.NextPageToken,
		Links:         p.Links,
		Raw:           payload,
	}
	for _, raw := range p.Hits {
		result.Hits = append(result.Hits, ParseHit(raw))
	}
	return result, nil
}
