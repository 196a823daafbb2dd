package controllers

import (
	"net/http"
	"time"

	"github.com/brfrauches/augmend-71119/middlewares"
	"github.com/brfrauches/augmend-71119/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const wsPingInterval = 25 * time.Second

type RealtimeController struct {
	RT       *services.RealtimeHub
	upgrader websocket.Upgrader
}

func NewRealtimeController(rt *services.RealtimeHub, allowedOrigins []string) *RealtimeController {
	return &RealtimeController{
		RT: rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middlewares.OriginAllowed(allowedOrigins, origin)
			},
		},
	}
}

// AlertsWS streams alerts for the authenticated user until the client goes away.
func (rc *RealtimeController) AlertsWS(c *gin.Context) {
	userID, ok := userIDFromCtx(c)
	if !ok {
		return
	}

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := &services.WSClient{UserID: userID, Conn: conn}
	rc.RT.Register(cl)

	done := make(chan struct{})
	defer close(done)

	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if err := cl.Ping(); err != nil {
					return
				}
			}
		}
	}()

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
