package utils

import "github.com/shirou/gopsutil/disk"

// CheckDiskSpace reports whether the filesystem holding path has at least
// required bytes free, and how much actually is.
func CheckDiskSpace(path string, required uint64) (bool, uint64) {
	usage, err := disk.Usage(path)
	if err != nil {
		return false, 0
	}
	return usage.Free >= required, usage.Free
}
