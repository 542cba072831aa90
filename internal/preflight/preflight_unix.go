//go:build unix

package preflight

import (
	"fmt"
	"syscall"
)

// minDiskSpaceBytes is the free space floor for the data directory.
const minDiskSpaceBytes = 100 * 1024 * 1024

// minFileDescriptors is the lowest fd limit the watcher can live with.
// Each watched directory holds a descriptor on some platforms.
const minFileDescriptors = 1024

func checkDiskSpace(path string) Result {
	result := Result{Name: "disk_space", Required: true}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot check disk space: %v", err)
		return result
	}

	available := stat.Bavail * uint64(stat.Bsize)
	result.Message = fmt.Sprintf("%s free (minimum: %s)",
		formatBytes(available), formatBytes(minDiskSpaceBytes))
	if available < minDiskSpaceBytes {
		result.Status = StatusFail
		return result
	}
	result.Status = StatusPass
	return result
}

func checkFileDescriptors() Result {
	result := Result{Name: "file_descriptors", Required: false}

	var rlim syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlim); err != nil {
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("cannot check fd limit: %v", err)
		return result
	}

	result.Message = fmt.Sprintf("%d (minimum: %d)", rlim.Cur, minFileDescriptors)
	if rlim.Cur < minFileDescriptors {
		result.Status = StatusWarn
		result.Details = "large trees may exhaust watch descriptors; raise with 'ulimit -n'"
		return result
	}
	result.Status = StatusPass
	return result
}
