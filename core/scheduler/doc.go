// Package scheduler dispatches chunk worker jobs to a Slurm cluster.
//
// Submission is fire-and-forget: sbatch returns once the job is queued, and
// the stocktake never observes job completion directly. Correctness relies on
// idempotent resubmission: chunk inputs are immutable and the catalog resume
// key travels in the job arguments, so a killed and resubmitted worker
// reproduces the same decisions.
package scheduler
