package job

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	schemasassets "github.com/3leaps/gojobcfg/internal/assets/schemas"
	"github.com/3leaps/gojobcfg/internal/schemavalidate"
)

// DocumentVersion is the wire format version written to every Document.
const DocumentVersion = "1.0"

// summaryFileLimit is how many input files Summary lists before eliding.
const summaryFileLimit = 3

var documentSchema = schemavalidate.New("job-description", schemasassets.JobDescriptionSchema)

// Document is the exported wire form of a Description.
type Document struct {
	Version    string         `json:"version" yaml:"version"`
	Process    string         `json:"process" yaml:"process"`
	Recipe     string         `json:"recipe,omitempty" yaml:"recipe,omitempty"`
	Source     SourceDoc      `json:"source" yaml:"source"`
	Conditions ConditionsDoc  `json:"conditions" yaml:"conditions"`
	Fragments  []string       `json:"fragments,omitempty" yaml:"fragments,omitempty"`
	Services   []ServiceDoc   `json:"services" yaml:"services"`
	Schedule   []PathDoc      `json:"schedule" yaml:"schedule"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// SourceDoc is the wire form of Source.
type SourceDoc struct {
	URIs      []string `json:"uris" yaml:"uris"`
	MaxEvents int      `json:"max_events" yaml:"max_events"`
}

// ConditionsDoc is the wire form of a conditions tag.
type ConditionsDoc struct {
	Tag       string            `json:"tag" yaml:"tag"`
	Overrides map[string]string `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// ServiceDoc is the wire form of Service.
type ServiceDoc struct {
	Type   string         `json:"type" yaml:"type"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// PathDoc is the wire form of Path.
type PathDoc struct {
	Name    string      `json:"name" yaml:"name"`
	Modules []ModuleDoc `json:"modules" yaml:"modules"`
}

// ModuleDoc is the wire form of module.Spec.
type ModuleDoc struct {
	Label  string            `json:"label" yaml:"label"`
	Type   string            `json:"type" yaml:"type"`
	Inputs map[string]string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Params map[string]any    `json:"params,omitempty" yaml:"params,omitempty"`
}

// Document returns the wire form of d. The result shares no state with d.
func (d *Description) Document() Document {
	doc := Document{
		Version: DocumentVersion,
		Process: d.process,
		Recipe:  d.recipe,
		Source: SourceDoc{
			URIs:      slices.Clone(d.source.URIs),
			MaxEvents: d.source.MaxEvents,
		},
		Conditions: ConditionsDoc{
			Tag:       d.conditions.Name(),
			Overrides: d.conditions.Overrides(),
		},
		Fragments:  slices.Clone(d.fragments),
		Services:   make([]ServiceDoc, 0, len(d.services)),
		Schedule:   make([]PathDoc, 0, len(d.schedule.Paths)),
		Parameters: cloneParams(d.params),
	}
	if len(doc.Conditions.Overrides) == 0 {
		doc.Conditions.Overrides = nil
	}
	for _, s := range d.services {
		doc.Services = append(doc.Services, ServiceDoc{Type: s.TypeName, Params: cloneParams(s.Params)})
	}
	for _, p := range d.schedule.Paths {
		pd := PathDoc{Name: p.Name, Modules: make([]ModuleDoc, 0, len(p.Modules))}
		for _, m := range p.Modules {
			pd.Modules = append(pd.Modules, ModuleDoc{
				Label:  m.Label,
				Type:   m.TypeName,
				Inputs: maps.Clone(m.Inputs),
				Params: cloneParams(m.Params),
			})
		}
		doc.Schedule = append(doc.Schedule, pd)
	}
	if doc.Parameters == nil {
		doc.Parameters = map[string]any{}
	}
	return doc
}

// ValidateDocument checks doc against the embedded job-description schema.
// Returns nil or schemavalidate.ValidationErrors.
func ValidateDocument(doc Document) error {
	return documentSchema.ValidateValue(doc)
}

// ValidateDocumentJSON checks a serialized document against the schema.
func ValidateDocumentJSON(data []byte) error {
	return documentSchema.ValidateJSON(data)
}

// Fingerprint returns the hex sha256 of the document's JSON encoding.
//
// encoding/json sorts map keys, so equal descriptions always produce the
// same fingerprint.
func (d *Description) Fingerprint() (string, error) {
	data, err := json.Marshal(d.Document())
	if err != nil {
		return "", fmt.Errorf("failed to encode job document: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Summary writes a human-readable overview of d to w.
func (d *Description) Summary(w io.Writer) error {
	rule := strings.Repeat("=", 60)
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "%s configuration\n", d.process)
	fmt.Fprintln(&b, rule)

	uris := d.source.URIs
	fmt.Fprintf(&b, "Input files: %d files\n", len(uris))
	for i, u := range uris {
		if i == summaryFileLimit {
			fmt.Fprintf(&b, "  ... and %d more\n", len(uris)-summaryFileLimit)
			break
		}
		fmt.Fprintf(&b, "  %s\n", u)
	}
	if d.source.MaxEvents == Unbounded {
		fmt.Fprintln(&b, "Max events: all")
	} else {
		fmt.Fprintf(&b, "Max events: %d\n", d.source.MaxEvents)
	}
	fmt.Fprintf(&b, "Conditions: %s\n", d.conditions)

	for _, s := range d.services {
		fmt.Fprintf(&b, "Service %s", s.TypeName)
		writeParams(&b, s.Params)
	}
	for _, p := range d.schedule.Paths {
		for _, m := range p.Modules {
			fmt.Fprintf(&b, "Module %s (%s) on path %s", m.Label, m.TypeName, p.Name)
			writeParams(&b, m.Params)
		}
	}
	fmt.Fprintln(&b, rule)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeParams(b *strings.Builder, params map[string]any) {
	if len(params) == 0 {
		b.WriteString("\n")
		return
	}
	b.WriteString(":\n")
	for _, k := range slices.Sorted(maps.Keys(params)) {
		fmt.Fprintf(b, "  %s: %v\n", k, params[k])
	}
}
