package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

// Diff is the comparison of two runs over the same source, keyed by
// issue identity (message, line).
type Diff struct {
	BaseRun   string     `json:"base_run"`
	HeadRun   string     `json:"head_run"`
	New       []ir.Issue `json:"new"`
	Resolved  []ir.Issue `json:"resolved"`
	Unchanged int        `json:"unchanged"`
}

func BuildDiff(base, head *ir.Run) Diff {
	d := Diff{BaseRun: base.ID, HeadRun: head.ID}

	baseKeys := make(map[string]struct{}, len(base.Issues))
	for _, iss := range base.Issues {
		baseKeys[iss.Key()] = struct{}{}
	}
	headKeys := make(map[string]struct{}, len(head.Issues))
	for _, iss := range head.Issues {
		headKeys[iss.Key()] = struct{}{}
	}

	for _, iss := range head.Issues {
		if _, ok := baseKeys[iss.Key()]; ok {
			d.Unchanged++
		} else {
			d.New = append(d.New, iss)
		}
	}
	for _, iss := range base.Issues {
		if _, ok := headKeys[iss.Key()]; !ok {
			d.Resolved = append(d.Resolved, iss)
		}
	}
	return d
}

func WriteDiffJSON(baseID, headID, outDir string, base, head *ir.Run) (string, error) {
	d := BuildDiff(base, head)
	path := filepath.Join(outDir, "diff-"+baseID+"-"+headID+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return "", err
	}
	return path, nil
}
