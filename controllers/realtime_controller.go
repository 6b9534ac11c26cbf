// controllers/realtime_controller.go
package controllers

import (
	"net/http"
	"time"

	"github.com/avandorn1/LLM-food-logging/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	Hub *services.RealtimeHub
}

func NewRealtimeController(hub *services.RealtimeHub) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LogsWS streams food-log change events to the client until it disconnects.
func (rc *RealtimeController) LogsWS(c *gin.Context) {
	uid := c.GetUint("userID")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: uid, Conn: conn}
	rc.Hub.Register(cl)

	// ping to keep connections alive through proxies
	go func() {
		t := time.NewTicker(25 * time.Second)
		defer t.Stop()
		for range t.C {
			if err := cl.WriteMessage(websocket.PingMessage, nil); err != nil {
				rc.Hub.Unregister(cl)
				return
			}
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.Hub.Unregister(cl)
			return
		}
	}
}
