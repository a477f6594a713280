//go:build linux

package txpath

import "golang.org/x/sys/unix"

// elevatePriority renices the calling thread to -20, the highest nice
// priority. Without CAP_SYS_NICE (or an RLIMIT_NICE that allows it) the
// call fails and its error is returned.
func elevatePriority() error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, -20)
}
