// Package metrics harvests ranking metrics reported by the trainer. Two
// sources exist: the metric lines the trainer prints at the end of an
// evaluation pass, and the per-metric files it drops in its results
// directory. File values win over parsed output when both are present.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// Metric keys, matching the trainer's results file names.
const (
	KeyMRR = "mrr"
)

// HitsKey returns the metric key for Hits@k.
func HitsKey(k int) string {
	return fmt.Sprintf("hits_at_%d", k)
}

// hitsLevels are the cutoffs the trainer computes.
var hitsLevels = []int{1, 3, 5, 10, 20}

var (
	// "Hits @1:   0.383023" and the "Hits@1 = 0.383023" variant.
	hitsRe = regexp.MustCompile(`Hits ?@(\d+)\s*[:=]\s*([0-9.eE+-]+)`)
	// "Mean reciprocal rank:   0.453811" and "MRR = 0.453811".
	mrrRe = regexp.MustCompile(`(?:Mean reciprocal rank|MRR)\s*[:=]\s*([0-9.eE+-]+)`)
)

// ParseOutput extracts metric values from captured trainer output. Repeated
// reports (one per evaluation pass) resolve to the last occurrence, which
// is the final evaluation.
func ParseOutput(output string) map[string]float64 {
	found := make(map[string]float64)

	for _, m := range hitsRe.FindAllStringSubmatch(output, -1) {
		k, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		found[HitsKey(k)] = v
	}
	for _, m := range mrrRe.FindAllStringSubmatch(output, -1) {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		found[KeyMRR] = v
	}

	if len(found) == 0 {
		return nil
	}
	return found
}

// HarvestDir reads the per-metric files (hits_at_K.txt, mrr.txt) from the
// trainer's results directory. The trainer appends one value per
// evaluation; the last parseable line of each file is taken. A missing
// directory or file is not an error, it just contributes nothing.
func HarvestDir(dir string) map[string]float64 {
	if dir == "" {
		return nil
	}

	found := make(map[string]float64)
	read := func(key, file string) {
		v, ok := lastValue(filepath.Join(dir, file))
		if ok {
			found[key] = v
		}
	}

	for _, k := range hitsLevels {
		read(HitsKey(k), fmt.Sprintf("hits_at_%d.txt", k))
	}
	read(KeyMRR, "mrr.txt")

	if len(found) == 0 {
		return nil
	}
	return found
}

// Harvest merges both sources for a finished run.
func Harvest(outputTail, resultsDir string) map[string]float64 {
	merged := ParseOutput(outputTail)
	for key, val := range HarvestDir(resultsDir) {
		if merged == nil {
			merged = make(map[string]float64)
		}
		merged[key] = val
	}
	return merged
}

// Primary returns the metric the trainer itself optimizes for model
// selection (Hits@1), falling back to MRR.
func Primary(m map[string]float64) (string, float64, bool) {
	if v, ok := m[HitsKey(1)]; ok {
		return HitsKey(1), v, true
	}
	if v, ok := m[KeyMRR]; ok {
		return KeyMRR, v, true
	}
	return "", 0, false
}

func lastValue(path string) (float64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
