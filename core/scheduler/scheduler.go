package scheduler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Job describes one chunk worker submission.
type Job struct {
	// SliceID and ChunkID identify the chunk input to process.
	SliceID int
	ChunkID int
	// CatalogResumeKey positions the worker's catalog cursor.
	CatalogResumeKey string
	// FirstChunk makes the catalog resume key inclusive.
	FirstChunk bool
	// LogDir receives the scheduler's stdout/stderr for the job.
	LogDir string
}

// Submitter queues chunk worker jobs.
type Submitter interface {
	Submit(ctx context.Context, job Job) error
}

// Config holds configuration for Slurm submission.
type Config struct {
	// Partition is the Slurm partition jobs are queued on.
	Partition string `mapstructure:"partition" default:"short-serial"`
	// Wallclock is the job time limit in Slurm syntax.
	Wallclock string `mapstructure:"wallclock" default:"00:10"`
	// WorkerCommand is the stocktake binary the job runs. Empty resolves
	// to the running executable.
	WorkerCommand string `mapstructure:"worker_command" default:""`
}

// Slurm submits jobs through sbatch.
type Slurm struct {
	cfg Config
	log *zap.Logger

	// runCommand is swapped by tests.
	runCommand func(ctx context.Context, name string, args ...string) error
}

// NewSlurm builds a submitter from the configuration.
func NewSlurm(cfg Config, log *zap.Logger) *Slurm {
	return &Slurm{
		cfg: cfg,
		log: log,
		runCommand: func(ctx context.Context, name string, args ...string) error {
			cmd := exec.CommandContext(ctx, name, args...)
			cmd.Env = os.Environ()
			out, err := cmd.CombinedOutput()
			if err != nil {
				return fmt.Errorf("%s: %s", err, out)
			}
			return nil
		},
	}
}

// Submit implements Submitter. It blocks only until sbatch accepts the job.
func (s *Slurm) Submit(ctx context.Context, job Job) error {
	worker := s.cfg.WorkerCommand
	if worker == "" {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("resolve worker command: %w", err)
		}
		worker = exe
	}

	args := []string{
		"-p", s.cfg.Partition,
		"-t", s.cfg.Wallclock,
		"-o", filepath.Join(job.LogDir, "standard.out"),
		"-e", filepath.Join(job.LogDir, "standard.err"),
		worker, "chunk",
		"--slice", strconv.Itoa(job.SliceID),
		"--chunk", strconv.Itoa(job.ChunkID),
		"--catalog-after", job.CatalogResumeKey,
	}
	if job.FirstChunk {
		args = append(args, "--first")
	}

	if err := s.runCommand(ctx, "sbatch", args...); err != nil {
		return fmt.Errorf("submit chunk %d/%d: %w", job.SliceID, job.ChunkID, err)
	}

	s.log.Info("chunk job submitted",
		zap.Int("slice", job.SliceID),
		zap.Int("chunk", job.ChunkID),
		zap.Bool("first", job.FirstChunk),
	)
	return nil
}
