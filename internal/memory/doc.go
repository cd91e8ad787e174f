// Package memory configures Go's runtime memory limit for containerized
// deployments.
//
// # Overview
//
// When running in Kubernetes or other container orchestrators, Go applications
// can be OOM-killed if they exceed their memory limits. Unlike GOMAXPROCS,
// which Go automatically detects from cgroup CPU limits, GOMEMLIMIT must be
// configured explicitly.
//
// This service is a special case: most of its memory is consumed not by the
// Go heap but by the yt-dlp and ffmpeg child processes it spawns for each
// download job. The Go side streams files in small chunks and stays small, so
// the heap is given only part of the container limit and the rest is left as
// headroom for subprocesses.
//
// Call [ConfigureFromEnv] early in main, before any significant allocations:
//
//	func main() {
//	    memory.ConfigureFromEnv()
//	    // ... rest of application
//	}
//
// # Environment Variables
//
//   - GOMEMLIMIT: Standard Go environment variable. If set, takes precedence
//     over all other configuration. Accepts values like "400MiB" or "1GiB".
//
//   - MEMORY_LIMIT: Container memory limit in bytes. Typically set via
//     Kubernetes Downward API. This is the raw value from which GOMEMLIMIT
//     is calculated.
//
//   - MEMORY_RATIO: Share of MEMORY_LIMIT to use for the Go heap, expressed
//     as a decimal between 0.0 and 1.0. Default is 0.50, sized for one or two
//     concurrent yt-dlp processes; raise it if MAX_CONCURRENT_JOBS is 1 and
//     the container is small, lower it for many parallel jobs.
//
// # Kubernetes Configuration
//
// To pass the container memory limit to the service, use the Downward API in
// the deployment manifest:
//
//	spec:
//	  containers:
//	  - name: media-fetcher
//	    resources:
//	      limits:
//	        memory: "1Gi"
//	    env:
//	    - name: MEMORY_LIMIT
//	      valueFrom:
//	        resourceFieldRef:
//	          resource: limits.memory
//
// GOMEMLIMIT is a soft limit: it only triggers more aggressive garbage
// collection as the heap approaches it, and it says nothing about memory used
// by child processes. The container limit still has to be sized for the worst
// case of MAX_CONCURRENT_JOBS simultaneous yt-dlp and ffmpeg invocations.
package memory
