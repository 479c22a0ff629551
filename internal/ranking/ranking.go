// Package ranking orders file reports and trims them to a file budget.
package ranking

import (
	"math"
	"sort"

	"github.com/phobologic/rsinspect/internal/model"
)

// Severity weights used by Score.
const (
	ErrorWeight   = 3
	WarningWeight = 1
)

// Score weighs a file's diagnostics by severity.
func Score(diags []model.Diagnostic) int {
	score := 0
	for i := range diags {
		switch diags[i].Severity {
		case model.SeverityError:
			score += ErrorWeight
		case model.SeverityWarning:
			score += WarningWeight
		}
	}
	return score
}

// Rank scores every file, computes its PageRank centrality over deps and
// sorts by score, then centrality, then path.
func Rank(files []model.FileReport, deps []model.Dependency) {
	if len(files) == 0 {
		return
	}

	for i := range files {
		files[i].Score = Score(files[i].Diagnostics)
	}

	nodes := make(map[string]struct{}, len(files))
	for i := range files {
		nodes[files[i].Path] = struct{}{}
	}

	// Edge from source to target means source uses generics declared in
	// target. Each symbol is an edge.
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for _, d := range deps {
		if _, ok := nodes[d.Source]; !ok {
			continue
		}
		if _, ok := nodes[d.Target]; !ok {
			continue
		}
		for range d.Symbols {
			outEdges[d.Source] = append(outEdges[d.Source], d.Target)
			outDegree[d.Source]++
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
	for i := range files {
		files[i].Centrality = ranks[files[i].Path]
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Score != files[j].Score {
			return files[i].Score > files[j].Score
		}
		if files[i].Centrality != files[j].Centrality {
			return files[i].Centrality > files[j].Centrality
		}
		return files[i].Path < files[j].Path
	})
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}
	if len(outEdges) == 0 {
		return rank
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Nodes with no outgoing edges spread their rank uniformly.
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}

// SelectFiles returns a report holding only the first maxFiles files.
// If maxFiles is <= 0 or >= len(files), the report is returned unchanged.
func SelectFiles(r *model.Report, maxFiles int) *model.Report {
	if maxFiles <= 0 || maxFiles >= len(r.Files) {
		return r
	}
	return &model.Report{
		RepoName: r.RepoName,
		Root:     r.Root,
		Analyzed: r.Analyzed,
		Files:    r.Files[:maxFiles],
	}
}

// AtLeast keeps only diagnostics whose severity ranks at or above floor and
// drops files left empty.
func AtLeast(r *model.Report, floor model.Severity) *model.Report {
	out := &model.Report{RepoName: r.RepoName, Root: r.Root, Analyzed: r.Analyzed}
	for i := range r.Files {
		var kept []model.Diagnostic
		for _, d := range r.Files[i].Diagnostics {
			if d.Severity.Rank() >= floor.Rank() {
				kept = append(kept, d)
			}
		}
		if len(kept) == 0 {
			continue
		}
		fr := r.Files[i]
		fr.Diagnostics = kept
		out.Files = append(out.Files, fr)
	}
	return out
}
