package reconciler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/onkernel/swarm-updater/lib/cluster"
)

// Title is the notification title for a service.
func Title(serviceName string) string {
	return fmt.Sprintf("Service: `%s`", serviceName)
}

// StartMessage announces an update to tag. Replicated services include the
// replica count.
func StartMessage(tag string, mode cluster.Mode, replicas uint64) string {
	if mode != cluster.ModeReplicated {
		return fmt.Sprintf("Found update for `%s`, updating.", tag)
	}
	plural := ""
	if replicas > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Found update for `%s`, updating %d replica%s.", tag, replicas, plural)
}

// SuccessMessage reports a completed update.
func SuccessMessage(elapsed time.Duration) string {
	return fmt.Sprintf("Update successful. Took %s seconds.", FormatElapsed(elapsed))
}

// FailureMessage reports a rejected update.
func FailureMessage(elapsed time.Duration, err error) string {
	return fmt.Sprintf("Update failed after %s seconds: %v", FormatElapsed(elapsed), err)
}

// FormatElapsed renders d in seconds truncated to two decimals, e.g. "1.23".
func FormatElapsed(d time.Duration) string {
	return strconv.FormatFloat(d.Truncate(10*time.Millisecond).Seconds(), 'f', 2, 64)
}
