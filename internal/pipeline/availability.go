package pipeline

import "github.com/pbaille/contentpack/internal/domain"

// RemoveUnavailableTopics drops every node whose path equals or descends from an
// unavailable path, and every node cut off from the root because an ancestor is
// missing from the feed. Unavailable paths are the explicit list plus topics whose
// "available" flag is false. Each node is tested against its own ancestor chain,
// so removing a topic removes its subtree without walking the tree.
func RemoveUnavailableTopics(nodes []domain.RawNode, unavailable []string) []domain.RawNode {
	present := make(map[string]bool, len(nodes))
	blocked := make(map[string]bool, len(unavailable))
	for _, p := range unavailable {
		if p != "" {
			blocked[normalizePath(p)] = true
		}
	}
	for _, n := range nodes {
		present[normalizePath(n.Path())] = true
		if avail, ok := n.Bool("available"); ok && !avail && n.Is(domain.KindTopic) {
			blocked[normalizePath(n.Path())] = true
		}
	}

	out := make([]domain.RawNode, 0, len(nodes))
	for _, n := range nodes {
		path := n.Path()
		if blocked[normalizePath(path)] {
			continue
		}
		keep := true
		for _, anc := range ancestors(path) {
			if blocked[normalizePath(anc)] || !present[normalizePath(anc)] {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, n)
		}
	}
	return out
}

// PruneEmptyTopics drops topics that have no video or exercise anywhere beneath them.
func PruneEmptyTopics(nodes []domain.RawNode) []domain.RawNode {
	nonEmpty := make(map[string]bool)
	for _, n := range nodes {
		if n.Is(domain.KindTopic) {
			continue
		}
		for _, anc := range ancestors(n.Path()) {
			key := normalizePath(anc)
			if nonEmpty[key] {
				break
			}
			nonEmpty[key] = true
		}
	}

	out := make([]domain.RawNode, 0, len(nodes))
	for _, n := range nodes {
		if n.Is(domain.KindTopic) && !nonEmpty[normalizePath(n.Path())] {
			continue
		}
		out = append(out, n)
	}
	return out
}

// RemoveDuplicateLeaves keeps the first occurrence of each video and exercise.
// Videos are keyed by youtube_id when the feed provides one. Topics pass through.
func RemoveDuplicateLeaves(nodes []domain.RawNode) []domain.RawNode {
	seen := make(map[string]bool)
	out := make([]domain.RawNode, 0, len(nodes))
	for _, n := range nodes {
		kind, ok := n.Kind()
		if !ok || kind == domain.KindTopic {
			out = append(out, n)
			continue
		}
		key := kind.String() + ":" + n.ID()
		if yt, ok := n.String("youtube_id"); ok && yt != "" && kind == domain.KindVideo {
			key = "youtube:" + yt
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

// MarkAvailability returns copies of nodes with "available" settled: exercises that
// survived filtering are available, videos keep the feed's flag, and a topic is
// available when anything beneath it is.
func MarkAvailability(nodes []domain.RawNode) []domain.RawNode {
	out := make([]domain.RawNode, len(nodes))
	availableTopics := make(map[string]bool)
	for i, node := range nodes {
		n := node.Clone()
		out[i] = n
		switch {
		case n.Is(domain.KindTopic):
			continue
		case n.Is(domain.KindExercise):
			n["available"] = true
		default:
			avail, _ := n.Bool("available")
			n["available"] = avail
		}
		if n["available"] == true {
			for _, anc := range ancestors(n.Path()) {
				key := normalizePath(anc)
				if availableTopics[key] {
					break
				}
				availableTopics[key] = true
			}
		}
	}
	for _, n := range out {
		if n.Is(domain.KindTopic) {
			n["available"] = availableTopics[normalizePath(n.Path())]
		}
	}
	return out
}
