package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ai-receptionist/internal/calls"
)

// StaticDirectory is an immutable number -> contractor map loaded at startup.
type StaticDirectory struct {
	byNumber map[string]Contractor
}

func NewStatic(entries map[string]Contractor) (*StaticDirectory, error) {
	out := make(map[string]Contractor, len(entries))
	for number, c := range entries {
		n := calls.NormalizePhone(number)
		if !calls.IsE164(n) {
			return nil, fmt.Errorf("directory: %q is not an E.164 number", number)
		}
		if strings.TrimSpace(c.ID) == "" {
			return nil, fmt.Errorf("directory: empty contractor id for %s", n)
		}
		out[n] = c
	}
	return &StaticDirectory{byNumber: out}, nil
}

func (d *StaticDirectory) Resolve(_ context.Context, dialed string) (Contractor, error) {
	c, ok := d.byNumber[calls.NormalizePhone(dialed)]
	if !ok {
		return Contractor{}, ErrNotFound
	}
	return c, nil
}

// Len returns the number of configured numbers.
func (d *StaticDirectory) Len() int { return len(d.byNumber) }

// entry accepts either "contractor-id" or {"id": "...", "name": "..."}.
type entry Contractor

func (e *entry) UnmarshalJSON(b []byte) error {
	var id string
	if err := json.Unmarshal(b, &id); err == nil {
		*e = entry{ID: id}
		return nil
	}
	var c Contractor
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	*e = entry(c)
	return nil
}

func (e *entry) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		*e = entry{ID: n.Value}
		return nil
	}
	var c Contractor
	if err := n.Decode(&c); err != nil {
		return err
	}
	*e = entry(c)
	return nil
}

// ParsePhoneMap builds a directory from the CONTRACTOR_PHONE_MAP JSON object.
func ParsePhoneMap(raw string) (*StaticDirectory, error) {
	var m map[string]entry
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("directory: parsing phone map: %w", err)
	}
	return fromEntries(m)
}

// LoadFile reads a YAML directory file of the form
//
//	contractors:
//	  "+15551230000": contractor-1
//	  "+15551230001": {id: contractor-2, name: Acme Plumbing}
func LoadFile(path string) (*StaticDirectory, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("directory: reading %s: %w", path, err)
	}
	var doc struct {
		Contractors map[string]entry `yaml:"contractors"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("directory: parsing %s: %w", path, err)
	}
	return fromEntries(doc.Contractors)
}

func fromEntries(m map[string]entry) (*StaticDirectory, error) {
	entries := make(map[string]Contractor, len(m))
	for k, v := range m {
		entries[k] = Contractor(v)
	}
	return NewStatic(entries)
}
