/*
Package workers provides utilities for determining optimal worker pool sizes
in containerized environments.

# Overview

When running Go applications in containers, the number of available CPUs may
be limited by cgroup constraints. While Go 1.19+ automatically sets GOMAXPROCS
based on container CPU limits, runtime.NumCPU() still returns the host
machine's CPU count. This package sizes worker pools from GOMAXPROCS instead,
so concurrency follows the resources the container was actually given.

# Basic Usage

The package provides task-specific helper functions:

	import "media-fetcher/internal/workers"

	// For CPU-intensive tasks (audio re-encoding, muxing)
	// Uses 1 worker per available CPU
	numWorkers := workers.ForCPU(8)

	// For I/O-bound tasks (stream downloads, disk writes)
	// Uses 2 workers per available CPU
	numWorkers := workers.ForIO(16)

	// For mixed workloads
	// Uses 1.5 workers per available CPU
	numWorkers := workers.ForMixed(12)

For fine-grained control, use Count directly:

	// 3 workers per CPU, maximum of 24
	numWorkers := workers.Count(3.0, 24)

# Environment Variable Override

All functions respect the JOB_WORKERS environment variable, allowing operators
to override the automatic calculation:

	env:
	- name: JOB_WORKERS
	  value: "4"

Download jobs spend most of their time waiting on the network and on
yt-dlp/ffmpeg subprocesses, so the default job slot count uses the I/O
multiplier. Always pass a limit: each job slot admits two concurrent stream
fetches plus an ffmpeg process, and an unbounded pool will saturate the
upstream long before it saturates the CPUs.

# Thread Safety

All functions in this package are safe for concurrent use. They read from
runtime.GOMAXPROCS and environment variables, which are themselves thread-safe.
*/
package workers
