package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Prasanna-Nadrajan/mlreview/internal/ir"
)

// WriteJSON emits the run verbatim as <runID>.json. The payload is the
// same ir.Run shape the API and golden snapshot use, so the three
// surfaces cannot drift apart.
func WriteJSON(runID, outDir string, run *ir.Run) (string, error) {
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(outDir, runID+".json")
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
