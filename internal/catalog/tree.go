package catalog

import (
	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/models"
)

// BuildForest assembles flat category rows into a parent/children forest and
// attaches the per-category gig count. Pure transformation over a snapshot:
//
//   - a row whose parent ID resolves to another row in the same batch becomes
//     a child of that row, exactly once
//   - a row whose parent ID is nil, or does not resolve within the batch,
//     becomes a root (silent fallback, never dropped)
//
// Rows keep their input order, both at the root level and within each parent,
// so the repository's sort is the display order.
func BuildForest(rows []*models.Category, counts map[uuid.UUID]int) []*models.CategoryNode {
	nodes := make(map[uuid.UUID]*models.CategoryNode, len(rows))
	for _, row := range rows {
		nodes[row.ID] = &models.CategoryNode{
			Category: *row,
			GigCount: counts[row.ID],
			Children: []*models.CategoryNode{},
		}
	}

	var roots []*models.CategoryNode
	for _, row := range rows {
		node := nodes[row.ID]
		if row.ParentID != nil {
			if parent, ok := nodes[*row.ParentID]; ok && *row.ParentID != row.ID {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}
