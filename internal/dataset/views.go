package dataset

// Views holds the three persisted renderings of one dataset.
type Views struct {
	Full            *Dataset
	InputOnly       *Dataset
	GroundTruthOnly *GroundTruthOnly
}

// NewViews derives the input-only and ground-truth-only views from ds. The
// ground truths are captured before the input-only copy is stripped, and
// the input-only view shares no memory with ds.
func NewViews(ds *Dataset) Views {
	gto := &GroundTruthOnly{
		Metadata:     ds.Metadata.clone(),
		GroundTruths: []GroundTruthEntry{},
	}
	for _, b := range ds.Bugs {
		for _, f := range b.Files {
			if !f.GroundTruth.HasSuggestions() {
				continue
			}
			gto.GroundTruths = append(gto.GroundTruths, GroundTruthEntry{
				BugID:       b.BugID,
				FilePath:    f.FilePath,
				GroundTruth: *f.GroundTruth.Clone(),
			})
		}
	}

	input := ds.Clone()
	no := false
	input.Metadata.IncludesGroundTruth = &no
	for i := range input.Bugs {
		for j := range input.Bugs[i].Files {
			input.Bugs[i].Files[j].GroundTruth = nil
		}
	}

	return Views{Full: ds, InputOnly: input, GroundTruthOnly: gto}
}
