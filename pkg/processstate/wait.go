package processstate

import (
	"context"
	"time"
)

const DefaultPollInterval = 100 * time.Millisecond

// WaitForExit polls until none of pids is running or ctx is done. It returns
// the pids still alive at that point, sorted as given.
func WaitForExit(ctx context.Context, pids []int, interval time.Duration) []int {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	alive := stillRunning(pids)
	if len(alive) == 0 {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return alive
		case <-ticker.C:
			alive = stillRunning(alive)
			if len(alive) == 0 {
				return nil
			}
		}
	}
}

func stillRunning(pids []int) []int {
	var alive []int
	for _, pid := range pids {
		// a failed probe counts as alive
		running, err := IsProcessRunning(pid)
		if running || err != nil {
			alive = append(alive, pid)
		}
	}
	return alive
}
