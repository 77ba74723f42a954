package daemon

import (
	"context"
	"time"

	"github.com/ahriknow/ahridocs/internal/ipc"
	"github.com/ahriknow/ahridocs/internal/watcher"
)

// setRootTimeout bounds how long an IPC client waits for a retarget.
const setRootTimeout = 30 * time.Second

// HandleStatus returns the current daemon status.
func (c *Controller) HandleStatus() ipc.StatusData {
	return c.statusData(c.Status())
}

// HandleSetRoot retargets the folder watch for an IPC client.
func (c *Controller) HandleSetRoot(root string) (ipc.StatusData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), setRootTimeout)
	defer cancel()

	// A failed install is reported through the degraded status.
	st, err := c.SetWatchRoot(ctx, root)
	if err != nil && !watcher.IsInstallError(err) {
		return ipc.StatusData{}, err
	}
	return c.statusData(st), nil
}

// HandleEvents returns journaled changes after since.
func (c *Controller) HandleEvents(since uint64) ipc.EventsResult {
	return c.journal.Since(since)
}

func (c *Controller) statusData(st watcher.Status) ipc.StatusData {
	data := ipc.StatusData{
		ConfigPath:  c.configPath,
		ConfigValid: true,
		ServerAddr:  c.ServerAddr(),
		State:       st.State,
		Root:        st.Root,
		Generation:  st.Generation,
		LastSeq:     c.journal.LastSeq(),
		Recent:      c.state.RecentRoots(),
	}
	if st.Root != "" && st.Root == c.state.LastRoot() {
		data.OpenedAt = c.state.LastOpened()
	}
	if st.Err != nil {
		data.WatchError = st.Err.Error()
	}
	return data
}
