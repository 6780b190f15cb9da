package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// streamerSocket upgrades the connection and runs the streamer side of the
// task's signaling session. The handler blocks for the connection lifetime;
// the relay unregisters the peer when the loop ends.
func (h *Handler) streamerSocket(c *gin.Context) {
	taskID, ok := wsTaskID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("upgrade streamer socket: %v", err)
		return
	}
	defer conn.Close()

	h.relay.ServeStreamer(taskID, conn)
}

// viewerSocket is the symmetric viewer side.
func (h *Handler) viewerSocket(c *gin.Context) {
	taskID, ok := wsTaskID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warnf("upgrade viewer socket: %v", err)
		return
	}
	defer conn.Close()

	h.relay.ServeViewer(taskID, conn)
}

func wsTaskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("task_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}
