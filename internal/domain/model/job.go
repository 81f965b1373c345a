package model

// Job is one forecast run flowing through the batch queue.
type Job struct {
	ID    string
	Index int
	Run   RunContext
	// Result receives exactly one JobResult. Producers size it so workers never block.
	Result chan<- JobResult
}

// JobResult is the outcome of a Job.
type JobResult struct {
	JobID  string
	Index  int
	Report Report
	Err    error
}
