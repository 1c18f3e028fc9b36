package forecast

import (
	"fmt"
	"sort"
	"strings"

	"github.com/iwvelando/revenue-forecast/internal/project"
)

// GroupBy selects the top level of the grouped view.
type GroupBy string

const (
	GroupBySegment GroupBy = "segment"
	GroupByType    GroupBy = "type"
	GroupByFlat    GroupBy = "flat"
)

// ParseGroupBy accepts segment, type or flat. An empty string selects segment.
func ParseGroupBy(s string) (GroupBy, error) {
	switch g := GroupBy(strings.ToLower(strings.TrimSpace(s))); g {
	case "":
		return GroupBySegment, nil
	case GroupBySegment, GroupByType, GroupByFlat:
		return g, nil
	}
	return "", fmt.Errorf("expected groupBy of segment, type or flat, got %s", s)
}

// ParseTypeFilter accepts a project type or "all". "all" and the empty string
// both return the empty type, which matches every project.
func ParseTypeFilter(s string) (project.Type, error) {
	t := project.Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" || t == "all" {
		return "", nil
	}
	if !t.Valid() {
		return "", fmt.Errorf("expected type of backlog, pipeline, product or all, got %s", s)
	}
	return t, nil
}

// RowKind identifies the role of a row in the grouped view.
type RowKind string

const (
	RowGroup   RowKind = "group"
	RowClient  RowKind = "client"
	RowProject RowKind = "project"
	RowTotal   RowKind = "total"
)

// Row is one line of the grouped monthly grid. Header rows carry the
// element-wise sum of the project rows beneath them.
type Row struct {
	ID          string       `json:"id"`
	Kind        RowKind      `json:"kind"`
	Label       string       `json:"label"`
	Client      string       `json:"client,omitempty"`
	ProjectID   string       `json:"projectId,omitempty"`
	Type        project.Type `json:"type,omitempty"`
	Probability *float64     `json:"probability,omitempty"`
	Depth       int          `json:"depth"`
	Monthly     Monthly      `json:"monthly"`
	Total       float64      `json:"total"`
	TCV         float64      `json:"tcv"`
	Weighted    float64      `json:"weighted"`
	Children    int          `json:"children,omitempty"`
}

// GridOptions parameterizes BuildGrid. An empty Type matches every project.
type GridOptions struct {
	Type    project.Type
	GroupBy GroupBy
	Year    int
}

type scopedProject struct {
	project project.Project
	monthly Monthly
	total   float64
}

// BuildGrid folds projects into the ordered rows of the monthly grid for one
// year. Projects without a footprint in the year are left out. The last row
// is always the grand total. An empty or unknown GroupBy groups by segment.
func BuildGrid(projects []project.Project, opts GridOptions) []Row {
	switch opts.GroupBy {
	case GroupBySegment, GroupByType, GroupByFlat:
	default:
		opts.GroupBy = GroupBySegment
	}
	scoped := scopeProjects(projects, opts)

	var rows []Row
	if opts.GroupBy == GroupByFlat {
		rows = flatRows(scoped)
	} else {
		rows = groupedRows(scoped, opts.GroupBy)
	}

	var leaves []Row
	for _, row := range rows {
		if row.Kind == RowProject {
			leaves = append(leaves, row)
		}
	}
	return append(rows, aggregateRow("total", RowTotal, "TOTAL", 0, leaves))
}

func scopeProjects(projects []project.Project, opts GridOptions) []scopedProject {
	var scoped []scopedProject
	for _, p := range projects {
		if opts.Type != "" && p.Type != opts.Type {
			continue
		}
		monthly := Allocate(p, opts.Year)
		if !monthly.HasValue() {
			continue
		}
		scoped = append(scoped, scopedProject{project: p, monthly: monthly, total: monthly.Sum()})
	}
	return scoped
}

func flatRows(scoped []scopedProject) []Row {
	sorted := append([]scopedProject(nil), scoped...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].total > sorted[j].total
	})

	rows := make([]Row, 0, len(sorted))
	for _, sp := range sorted {
		rows = append(rows, projectRow(sp, 1, fmt.Sprintf("%s (%s)", sp.project.Name, sp.project.Client)))
	}
	return rows
}

type groupKey struct {
	key   string
	label string
}

type clientBucket struct {
	key      string
	projects []scopedProject
	total    float64
}

func groupKeys(groupBy GroupBy) []groupKey {
	var keys []groupKey
	if groupBy == GroupByType {
		for _, t := range project.Types {
			keys = append(keys, groupKey{key: string(t), label: t.Label()})
		}
		return keys
	}
	for _, s := range project.Segments {
		keys = append(keys, groupKey{key: string(s), label: s.Label()})
	}
	return keys
}

func groupOf(p project.Project, groupBy GroupBy) string {
	if groupBy == GroupByType {
		return string(p.Type)
	}
	return string(p.Segment)
}

func groupedRows(scoped []scopedProject, groupBy GroupBy) []Row {
	var rows []Row
	for _, g := range groupKeys(groupBy) {
		var members []scopedProject
		for _, sp := range scoped {
			if groupOf(sp.project, groupBy) == g.key {
				members = append(members, sp)
			}
		}
		if len(members) == 0 {
			continue
		}

		groupID := fmt.Sprintf("group:%s:%s", groupBy, g.key)
		var body []Row
		for _, bucket := range clientBuckets(members) {
			if len(bucket.projects) == 1 {
				sp := bucket.projects[0]
				body = append(body, projectRow(sp, 1, fmt.Sprintf("%s (%s)", sp.project.Name, bucket.key)))
				continue
			}
			children := make([]Row, 0, len(bucket.projects))
			for _, sp := range bucket.projects {
				children = append(children, projectRow(sp, 2, sp.project.Name))
			}
			header := aggregateRow(fmt.Sprintf("client:%s:%s:%s", groupBy, g.key, bucket.key), RowClient, bucket.key, 1, children)
			header.Client = bucket.key
			body = append(body, header)
			body = append(body, children...)
		}

		var leaves []Row
		for _, row := range body {
			if row.Kind == RowProject {
				leaves = append(leaves, row)
			}
		}
		rows = append(rows, aggregateRow(groupID, RowGroup, g.label, 0, leaves))
		rows = append(rows, body...)
	}
	return rows
}

// clientBuckets groups members by client key, keeping first-appearance order
// for ties, and orders buckets by descending yearly total.
func clientBuckets(members []scopedProject) []clientBucket {
	index := make(map[string]int)
	var buckets []clientBucket
	for _, sp := range members {
		key := sp.project.ClientKey()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, clientBucket{key: key})
		}
		buckets[i].projects = append(buckets[i].projects, sp)
		buckets[i].total += sp.total
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].total > buckets[j].total
	})
	return buckets
}

func projectRow(sp scopedProject, depth int, label string) Row {
	p := sp.project
	probability := p.Probability
	id := p.ID
	if id == "" {
		id = p.Name
	}
	return Row{
		ID:          "project:" + id,
		Kind:        RowProject,
		Label:       label,
		Client:      p.ClientKey(),
		ProjectID:   p.ID,
		Type:        p.Type,
		Probability: &probability,
		Depth:       depth,
		Monthly:     sp.monthly,
		Total:       sp.total,
		TCV:         TCV(p),
		Weighted:    WeightedTotal(p),
	}
}

// aggregateRow sums leaves in order. Summation order is fixed by the row
// order, so repeated builds over the same input are bit-identical.
func aggregateRow(id string, kind RowKind, label string, depth int, leaves []Row) Row {
	row := Row{ID: id, Kind: kind, Label: label, Depth: depth, Children: len(leaves)}
	for _, leaf := range leaves {
		row.Monthly.Add(leaf.Monthly)
		row.Total += leaf.Total
		row.TCV += leaf.TCV
		row.Weighted += leaf.Weighted
	}
	return row
}
