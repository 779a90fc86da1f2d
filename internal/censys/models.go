package censys

import (
	"encoding/json"
	"strings"
)

// Host represents a host asset as returned by the host endpoint
type Host struct {
	IP               string            `json:"ip"`
	Location         *Location         `json:"location,omitempty"`
	AutonomousSystem *AutonomousSystem `json:"autonomous_system,omitempty"`
	Whois            *Whois            `json:"whois,omitempty"`
	Services         []Service         `json:"services,omitempty"`
	ServiceCount     int               `json:"service_count,omitempty"`
	DNS              *DNS              `json:"dns,omitempty"`

	// Raw is the normalized payload the host was decoded from
	Raw json.RawMessage `json:"-"`
}

// Location holds the geolocation of a host
type Location struct {
	Continent   string       `json:"continent,omitempty"`
	Country     string       `json:"country,omitempty"`
	CountryCode string       `json:"country_code,omitempty"`
	Province    string       `json:"province,omitempty"`
	City        string       `json:"city,omitempty"`
	PostalCode  string       `json:"postal_code,omitempty"`
	Timezone    string       `json:"timezone,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Coordinates is a latitude/longitude pair
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// AutonomousSystem describes the AS announcing a host's prefix
type AutonomousSystem struct {
	ASN         int    `json:"asn,omitempty"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	BGPPrefix   string `json:"bgp_prefix,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
}

// Whois holds registration data for the network a host belongs to
type Whois struct {
	Organization *Organization `json:"organization,omitempty"`
	Network      *Network      `json:"network,omitempty"`
}

// Organization is the WHOIS registrant organization
type Organization struct {
	Handle        string    `json:"handle,omitempty"`
	Name          string    `json:"name,omitempty"`
	Street        string    `json:"street,omitempty"`
	City          string    `json:"city,omitempty"`
	State         string    `json:"state,omitempty"`
	PostalCode    string    `json:"postal_code,omitempty"`
	Country       string    `json:"country,omitempty"`
	AbuseContacts []Contact `json:"abuse_contacts,omitempty"`
}

// Address joins the non-empty address parts of the organization
func (o *Organization) Address() string {
	var parts []string
	for _, p := range []string{o.Street, o.City, o.State, o.PostalCode, o.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// AbuseEmail returns the first abuse contact email, if any
func (o *Organization) AbuseEmail() string {
	for _, c := range o.AbuseContacts {
		if c.Email != "" {
			return c.Email
		}
	}
	return ""
}

// Contact is a WHOIS point of contact
type Contact struct {
	Handle string `json:"handle,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Network is the WHOIS network block
type Network struct {
	Handle string   `json:"handle,omitempty"`
	Name   string   `json:"name,omitempty"`
	CIDRs  []string `json:"cidrs,omitempty"`
}

// Service is a single open port observed on a host
type Service struct {
	Port              int    `json:"port"`
	Protocol          string `json:"protocol,omitempty"`
	TransportProtocol string `json:"transport_protocol,omitempty"`
}

// DNS holds forward and reverse names for a host
type DNS struct {
	Names      []string    `json:"names,omitempty"`
	ReverseDNS *ReverseDNS `json:"reverse_dns,omitempty"`
}

// ReverseDNS holds PTR names
type ReverseDNS struct {
	Names []string `json:"names,omitempty"`
}

// Certificate is the subset of a certificate asset shown in search results
type Certificate struct {
	FingerprintSHA256 string   `json:"fingerprint_sha256,omitempty"`
	Names             []string `json:"names,omitempty"`
}

// WebProperty is the subset of a web property asset shown in search results
type WebProperty struct {
	Name     string   `json:"name,omitempty"`
	Hostname string   `json:"hostname,omitempty"`
	Port     int      `json:"port,omitempty"`
	Domains  []string `json:"domains,omitempty"`
}

// SearchRequest is the body of a search query
type SearchRequest struct {
	Query     string   `json:"query"`
	PageSize  int      `json:"page_size"`
	PageToken string   `json:"page_token,omitempty"`
	Fields    []string `json:"fields,omitempty"`
}

// SearchFields is the projection requested for every search
var SearchFields = []string{
	"host.ip",
	"host.location.country",
	"host.location.city",
	"host.services.port",
	"cert.fingerprint_sha256",
	"cert.names",
	"web.hostname",
	"web.port",
}

// SearchResult is one page of search hits
type SearchResult struct {
	TotalHits     float64 `json:"total_hits"`
	Hits          []Hit   `json:"-"`
	NextPageToken string  `json:"next_page_token,omitempty"`
	Links         *Links  `json:"links,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Links carries pagination links
type Links struct {
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

// NextPage returns the continuation token, falling back to the next link
func (r *SearchResult) NextPage() string {
	if r.NextPageToken != "" {
		return r.NextPageToken
	}
	if r.Links != nil {
		return r.Links.Next
	}
	return ""
}

// AggregateRequest is the body of an aggregation query
type AggregateRequest struct {
	Query           string `json:"query"`
	Field           string `json:"field"`
	NumberOfBuckets int    `json:"number_of_buckets"`
	FilterByQuery   bool   `json:"filter_by_query"`
	CountByLevel    string `json:"count_by_level,omitempty"`
}

// AggregateResult holds the buckets of an aggregation
type AggregateResult struct {
	Buckets    []Bucket `json:"buckets"`
	TotalCount *float64 `json:"total_count,omitempty"`
	OtherCount *float64 `json:"other_count,omitempty"`

	Raw json.RawMessage `json:"-"`
}

// Bucket is one aggregation bucket
type Bucket struct {
	Key   BucketKey `json:"key"`
	Value BucketKey `json:"value"`
	Count float64   `json:"count"`
}

// Label returns the bucket key, falling back to its value
func (b Bucket) Label() string {
	if b.Key != "" {
		return string(b.Key)
	}
	if b.Value != "" {
		return string(b.Value)
	}
	return "-"
}

// BucketKey accepts a string, number or boolean bucket key
type BucketKey string

func (k *BucketKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := jsonAPI.Unmarshal(data, &s); err == nil {
		*k = BucketKey(s)
		return nil
	}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*k = ""
		return nil
	}
	*k = BucketKey(trimmed)
	return nil
}
