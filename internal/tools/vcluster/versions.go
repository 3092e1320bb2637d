package vcluster

import (
	"context"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/giantswarm/mcp-vcluster/internal/instrumentation"
	"github.com/giantswarm/mcp-vcluster/internal/resolver"
	"github.com/giantswarm/mcp-vcluster/internal/tools"
)

// versionsResponse is the list-versions result.
type versionsResponse struct {
	Default  string   `json:"default"`
	Versions []string `json:"versions"`
	Total    int      `json:"total"`
}

func (r *versionsResponse) TableHeaders() []string {
	return []string{"version", "kind"}
}

func (r *versionsResponse) TableRows() [][]string {
	rows := make([][]string, 0, len(r.Versions))
	for _, v := range r.Versions {
		rows = append(rows, []string{v, instrumentation.ClassifyVersion(v)})
	}
	return rows
}

func handleListVersions(ctx context.Context, d *Dispatcher, args tools.Args) (*tools.Envelope, error) {
	if d.client == nil {
		return nil, resolver.ErrNoRemoteClient
	}
	tags, err := d.client.GetTags(ctx)
	if err != nil {
		return nil, err
	}

	versions := orderVersions(d.defaultVersion, tags)
	return d.render(args, &versionsResponse{
		Default:  d.defaultVersion,
		Versions: versions,
		Total:    len(versions),
	})
}

// orderVersions puts def first, then semantic version tags newest first,
// then all other tags in their original order. Duplicates are dropped.
func orderVersions(def string, tags []string) []string {
	type semverTag struct {
		tag string
		v   *semver.Version
	}

	seen := map[string]bool{def: true}
	var (
		sem   []semverTag
		other []string
	)
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		if v, err := semver.NewVersion(tag); err == nil {
			sem = append(sem, semverTag{tag: tag, v: v})
		} else {
			other = append(other, tag)
		}
	}

	sort.SliceStable(sem, func(i, j int) bool {
		return sem[i].v.GreaterThan(sem[j].v)
	})

	out := make([]string, 0, 1+len(sem)+len(other))
	out = append(out, def)
	for _, s := range sem {
		out = append(out, s.tag)
	}
	return append(out, other...)
}
