package batch

// Result records the outcome of one file's trim pipeline.
type Result struct {
	// Path is the source file path as discovered under the input root.
	Path string
	// RelPath is the path relative to the input root, also the
	// tree-relative output location.
	RelPath string
	// SamplesIn is the decoded sample count (0 when decoding failed).
	SamplesIn int
	// SamplesOut is the sample count after trimming.
	SamplesOut int
	// Err is the failure that stopped this file's pipeline, nil on
	// success. A failure never affects other files.
	Err error
}

// Ok reports whether the file was processed successfully.
func (r Result) Ok() bool {
	return r.Err == nil
}

// Summary aggregates a completed batch run.
type Summary struct {
	// RunID correlates this run's log lines.
	RunID string
	// Processed counts files trimmed and written successfully.
	Processed int
	// Failed counts files whose pipeline reported an error.
	Failed int
	// Results holds the per-file records, one per discovered WAV file.
	Results []Result
}
