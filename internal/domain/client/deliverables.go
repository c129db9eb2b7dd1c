package client

import (
	"encoding/json"
	"fmt"

	"github.com/agencyhub/backend/internal/domain/shared"
)

// DeliverableKind is the discriminant of a Deliverables value
type DeliverableKind string

const (
	DeliverableSocial  DeliverableKind = "social"
	DeliverableLogo    DeliverableKind = "logo"
	DeliverableWebsite DeliverableKind = "website"
	DeliverableCustom  DeliverableKind = "custom"
)

// Deliverables is the tracked unit-of-work breakdown of a service.
// The set of implementations is closed to this package.
type Deliverables interface {
	Kind() DeliverableKind
	// Validate rejects negative counters and done counts above their totals.
	Validate() error
	// Progress is the completion percentage in [0, 100].
	Progress() int
	sealed()
}

// SocialDeliverables tracks social media content production
type SocialDeliverables struct {
	PostsDone    int `json:"posts_done"`
	PostsTotal   int `json:"posts_total"`
	ReelsDone    int `json:"reels_done"`
	ReelsTotal   int `json:"reels_total"`
	StoriesDone  int `json:"stories_done"`
	StoriesTotal int `json:"stories_total"`
}

// LogoDeliverables tracks brand identity work
type LogoDeliverables struct {
	ConceptsDone   int `json:"concepts_done"`
	ConceptsTotal  int `json:"concepts_total"`
	RevisionsDone  int `json:"revisions_done"`
	RevisionsTotal int `json:"revisions_total"`
}

// WebsiteDeliverables tracks website milestones
type WebsiteDeliverables struct {
	Design      bool `json:"design"`
	Development bool `json:"development"`
	Content     bool `json:"content"`
	Launch      bool `json:"launch"`
}

// CustomItem is a free-form counter
type CustomItem struct {
	Label string `json:"label"`
	Done  int    `json:"done"`
	Total int    `json:"total"`
}

// CustomDeliverables tracks arbitrary labelled counters
type CustomDeliverables struct {
	Items []CustomItem `json:"items"`
}

type counter struct {
	field       string
	done, total int
}

func validateCounters(kind DeliverableKind, counters ...counter) error {
	for _, c := range counters {
		if c.done < 0 || c.total < 0 {
			return malformed(fmt.Sprintf("%s deliverables: %s cannot be negative", kind, c.field))
		}
		if c.done > c.total {
			return malformed(fmt.Sprintf("%s deliverables: %s done (%d) exceeds total (%d)", kind, c.field, c.done, c.total))
		}
	}
	return nil
}

func counterProgress(counters ...counter) int {
	var done, total int
	for _, c := range counters {
		done += c.done
		total += c.total
	}
	if total == 0 {
		return 0
	}
	return done * 100 / total
}

func (d SocialDeliverables) counters() []counter {
	return []counter{
		{"posts", d.PostsDone, d.PostsTotal},
		{"reels", d.ReelsDone, d.ReelsTotal},
		{"stories", d.StoriesDone, d.StoriesTotal},
	}
}

func (SocialDeliverables) Kind() DeliverableKind { return DeliverableSocial }
func (d SocialDeliverables) Validate() error {
	return validateCounters(DeliverableSocial, d.counters()...)
}
func (d SocialDeliverables) Progress() int { return counterProgress(d.counters()...) }
func (SocialDeliverables) sealed()         {}

func (d LogoDeliverables) counters() []counter {
	return []counter{
		{"concepts", d.ConceptsDone, d.ConceptsTotal},
		{"revisions", d.RevisionsDone, d.RevisionsTotal},
	}
}

func (LogoDeliverables) Kind() DeliverableKind { return DeliverableLogo }
func (d LogoDeliverables) Validate() error {
	return validateCounters(DeliverableLogo, d.counters()...)
}
func (d LogoDeliverables) Progress() int { return counterProgress(d.counters()...) }
func (LogoDeliverables) sealed()         {}

func (WebsiteDeliverables) Kind() DeliverableKind { return DeliverableWebsite }
func (WebsiteDeliverables) Validate() error       { return nil }
func (d WebsiteDeliverables) Progress() int {
	done := 0
	for _, m := range []bool{d.Design, d.Development, d.Content, d.Launch} {
		if m {
			done++
		}
	}
	return done * 100 / 4
}
func (WebsiteDeliverables) sealed() {}

func (d CustomDeliverables) counters() []counter {
	cs := make([]counter, 0, len(d.Items))
	for _, it := range d.Items {
		cs = append(cs, counter{it.Label, it.Done, it.Total})
	}
	return cs
}

func (CustomDeliverables) Kind() DeliverableKind { return DeliverableCustom }
func (d CustomDeliverables) Validate() error {
	for _, it := range d.Items {
		if it.Label == "" {
			return malformed("custom deliverables: item label is required")
		}
	}
	return validateCounters(DeliverableCustom, d.counters()...)
}
func (d CustomDeliverables) Progress() int { return counterProgress(d.counters()...) }
func (CustomDeliverables) sealed()         {}

// MarshalDeliverables encodes d with a "type" discriminant. A nil value
// encodes as JSON null.
func MarshalDeliverables(d Deliverables) ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	body, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	kind, _ := json.Marshal(d.Kind())
	fields["type"] = kind
	return json.Marshal(fields)
}

// UnmarshalDeliverables decodes a discriminated deliverables record.
// Empty input and JSON null decode to nil.
func UnmarshalDeliverables(data []byte) (Deliverables, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var head struct {
		Type DeliverableKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, shared.WrapDomainError(shared.ErrMalformedService.Code, "deliverables: invalid JSON", err)
	}

	var (
		d   Deliverables
		err error
	)
	switch head.Type {
	case DeliverableSocial:
		var v SocialDeliverables
		err = json.Unmarshal(data, &v)
		d = v
	case DeliverableLogo:
		var v LogoDeliverables
		err = json.Unmarshal(data, &v)
		d = v
	case DeliverableWebsite:
		var v WebsiteDeliverables
		err = json.Unmarshal(data, &v)
		d = v
	case DeliverableCustom:
		var v CustomDeliverables
		err = json.Unmarshal(data, &v)
		d = v
	default:
		return nil, malformed(fmt.Sprintf("deliverables: unknown type %q", head.Type))
	}
	if err != nil {
		return nil, shared.WrapDomainError(shared.ErrMalformedService.Code, "deliverables: invalid "+string(head.Type)+" payload", err)
	}
	return d, nil
}

func malformed(msg string) *shared.DomainError {
	return shared.NewDomainError(shared.ErrMalformedService.Code, msg)
}
