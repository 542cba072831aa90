//go:build windows

package preflight

func checkDiskSpace(string) Result {
	return Result{Name: "disk_space", Status: StatusWarn, Message: "not checked on this platform"}
}

func checkFileDescriptors() Result {
	return Result{Name: "file_descriptors", Status: StatusPass, Message: "no fd limit on this platform"}
}
