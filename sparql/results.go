package sparql

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Results is a decoded application/sparql-results+json document.
type Results struct {
	Head struct {
		Vars []string `json:"vars"`
		Link []string `json:"link,omitempty"`
	} `json:"head"`
	Boolean *bool `json:"boolean,omitempty"`
	Results struct {
		Bindings []Row `json:"bindings"`
	} `json:"results"`
}

// Row is one solution: variable name to bound value. Unbound variables are
// absent.
type Row map[string]Binding

// Binding is one RDF term in a result row.
type Binding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Lang     string `json:"xml:lang,omitempty"`
	Datatype string `json:"datatype,omitempty"`
}

// IsIRI reports whether the binding is an IRI.
func (b Binding) IsIRI() bool { return b.Type == "uri" }

// Float parses the value as a number, as numeric literals are returned for
// xsd:float and xsd:decimal columns.
func (b Binding) Float() (float64, error) {
	f, err := strconv.ParseFloat(b.Value, 64)
	if err != nil {
		return 0, fmt.Errorf("binding %q is not numeric: %w", b.Value, err)
	}
	return f, nil
}

// DecodeResults reads a SPARQL JSON results document.
func DecodeResults(r io.Reader) (*Results, error) {
	var res Results
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode SPARQL results: %w", err)
	}
	return &res, nil
}

// Rows returns the solution rows.
func (r *Results) Rows() []Row {
	return r.Results.Bindings
}

// Bag is the set of attributes one result row carries for an entity, keyed by
// the part after the double underscore.
type Bag struct {
	ID              string            `json:"id,omitempty"`
	PrefLabel       string            `json:"prefLabel,omitempty"`
	DataProviderURL string            `json:"dataProviderUrl,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
}

func (b *Bag) set(attr, value string) {
	switch attr {
	case AttrID:
		b.ID = value
	case AttrPrefLabel:
		b.PrefLabel = value
	case AttrDataProviderURL:
		b.DataProviderURL = value
	default:
		if b.Attributes == nil {
			b.Attributes = map[string]string{}
		}
		b.Attributes[attr] = value
	}
}

// key identifies a bag by all of its values, so bags sharing an id but
// differing in label or attributes stay distinct.
func (b Bag) key() string {
	keys := make([]string, 0, len(b.Attributes))
	for k := range b.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%q %q %q", b.ID, b.PrefLabel, b.DataProviderURL)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %q=%q", k, b.Attributes[k])
	}
	return sb.String()
}

// PropertyBags splits a row into one bag per entity prefix. Variables without
// a double underscore are returned separately.
func PropertyBags(row Row) (bags map[string]Bag, plain map[string]string) {
	bags = map[string]Bag{}
	plain = map[string]string{}
	for name, b := range row {
		entity, attr, ok := SplitVar(name)
		if !ok {
			plain[name] = b.Value
			continue
		}
		bag := bags[entity]
		bag.set(attr, b.Value)
		bags[entity] = bag
	}
	return bags, plain
}

// Instance is one result-set entity assembled from all rows sharing its ?id.
type Instance struct {
	ID         string              `json:"id"`
	Properties map[string][]Bag    `json:"properties,omitempty"`
	Values     map[string][]string `json:"values,omitempty"`
}

// MapInstances groups rows by ?id, collecting each entity's bags and the plain
// values without duplicates. Rows without ?id are grouped under the empty id.
// Instances keep the order in which their first row appeared.
func MapInstances(rows []Row) []*Instance {
	var out []*Instance
	byID := map[string]*Instance{}
	seen := map[string]map[string]bool{}

	for _, row := range rows {
		id := row["id"].Value
		inst, ok := byID[id]
		if !ok {
			inst = &Instance{ID: id, Properties: map[string][]Bag{}, Values: map[string][]string{}}
			byID[id] = inst
			seen[id] = map[string]bool{}
			out = append(out, inst)
		}

		bags, plain := PropertyBags(row)
		for entity, bag := range bags {
			k := "bag:" + entity + ":" + bag.key()
			if seen[id][k] {
				continue
			}
			seen[id][k] = true
			inst.Properties[entity] = append(inst.Properties[entity], bag)
		}
		for name, v := range plain {
			if name == "id" {
				continue
			}
			k := "val:" + name + ":" + v
			if seen[id][k] {
				continue
			}
			seen[id][k] = true
			inst.Values[name] = append(inst.Values[name], v)
		}
	}
	return out
}
