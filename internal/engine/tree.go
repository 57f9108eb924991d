package engine

import (
	"sort"

	"github.com/ds124wfegd/WB_L3/6/internal/entity"
)

// BuildTree turns a flat, fetch-ordered record list into a forest of root
// comments with Children and Depth populated. Siblings are sorted by policy
// independently at every level with a stable sort, so equal keys keep fetch
// order. A record whose parent is not in the input is treated as a root
// until the parent gets paginated in.
func BuildTree(records []entity.Comment, policy entity.SortPolicy) []entity.Comment {
	byID := make(map[string]*entity.Comment, len(records))
	nodes := make([]*entity.Comment, 0, len(records))

	for _, rec := range records {
		node := rec
		node.Children = nil
		node.Depth = 0
		byID[node.ID] = &node
		nodes = append(nodes, &node)
	}

	var roots []*entity.Comment
	children := make(map[string][]*entity.Comment)

	for _, node := range nodes {
		if node.ParentID != "" {
			if _, ok := byID[node.ParentID]; ok {
				children[node.ParentID] = append(children[node.ParentID], node)
				continue
			}
		}
		roots = append(roots, node)
	}

	var assemble func(node *entity.Comment, depth int) entity.Comment
	assemble = func(node *entity.Comment, depth int) entity.Comment {
		node.Depth = depth
		kids := children[node.ID]
		sortSiblings(kids, policy)
		node.Children = make([]entity.Comment, 0, len(kids))
		for _, kid := range kids {
			node.Children = append(node.Children, assemble(kid, depth+1))
		}
		return *node
	}

	sortSiblings(roots, policy)
	forest := make([]entity.Comment, 0, len(roots))
	for _, root := range roots {
		forest = append(forest, assemble(root, 0))
	}
	return forest
}

func sortSiblings(nodes []*entity.Comment, policy entity.SortPolicy) {
	switch policy {
	case entity.SortNewest:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].CreatedAt.After(nodes[j].CreatedAt)
		})
	case entity.SortOldest:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		})
	case entity.SortMostLiked:
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].LikesCount > nodes[j].LikesCount
		})
	}
}
