// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/revenue-forecast/internal/forecast"
	"github.com/iwvelando/revenue-forecast/internal/project"
)

// FindRow finds a grid row by its stable id.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(rows []forecast.Row, id string) *forecast.Row {
	for i := range rows {
		if rows[i].ID == id {
			return &rows[i]
		}
	}
	return nil
}

// RowIDs lists the row ids in display order.
func RowIDs(rows []forecast.Row) []string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return ids
}

// FindProject finds a project by id.
func FindProject(projects []project.Project, id string) *project.Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

// ProjectIDs lists the project ids in order.
func ProjectIDs(projects []project.Project) []string {
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	return ids
}
