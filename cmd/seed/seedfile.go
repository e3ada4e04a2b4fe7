package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/record"
	"propdesk-service/internal/domain/repository"

	"gopkg.in/yaml.v3"
)

// seedFile is the layout of configs/reason_maps.yaml. Properties lists the
// default targets; Overrides replaces individual taxonomies per property.
type seedFile struct {
	Properties       []string                               `yaml:"properties"`
	StaffDepartments []string                               `yaml:"staffDepartments"`
	Reasons          map[string]entity.ReasonMap            `yaml:"reasons"`
	Overrides        map[string]map[string]entity.ReasonMap `yaml:"overrides"`
}

func parseSeedFile(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	known := make(map[string]bool, len(record.ReasonFields))
	for _, rf := range record.ReasonFields {
		known[rf.Key] = true
	}
	check := func(where string, maps map[string]entity.ReasonMap) error {
		for key := range maps {
			if !known[key] {
				return fmt.Errorf("%s: unknown reason taxonomy %q", where, key)
			}
		}
		return nil
	}
	if err := check("reasons", f.Reasons); err != nil {
		return nil, err
	}
	for pid, maps := range f.Overrides {
		if err := check("overrides."+pid, maps); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// seedFor merges the defaults with the property's overrides.
func (f *seedFile) seedFor(propertyID string, pruneLegacy bool) repository.ReasonSeed {
	maps := make(map[string]entity.ReasonMap, len(f.Reasons))
	for k, v := range f.Reasons {
		maps[k] = v
	}
	for k, v := range f.Overrides[propertyID] {
		maps[k] = v
	}
	return repository.ReasonSeed{
		Maps:             maps,
		StaffDepartments: f.StaffDepartments,
		PruneLegacy:      pruneLegacy,
	}
}

// targets resolves the -property flag. An empty flag means every property
// named in the file, including those that only have overrides.
func (f *seedFile) targets(flagValue string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		id = strings.TrimSpace(id)
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	if flagValue != "" {
		for _, id := range strings.Split(flagValue, ",") {
			add(id)
		}
		return out
	}

	for _, id := range f.Properties {
		add(id)
	}
	extra := make([]string, 0, len(f.Overrides))
	for id := range f.Overrides {
		extra = append(extra, id)
	}
	sort.Strings(extra)
	for _, id := range extra {
		add(id)
	}
	return out
}
