package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"visionhelp/internal/helpctx"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 16
)

// handleContextStream bridges the tracker's pub/sub to a WebSocket so the
// browser-side renderers can react to context changes. Events from all four
// kinds are forwarded as JSON in emission order.
func (s *Server) handleContextStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed: %v", err)
		return
	}

	send := make(chan helpctx.Event, wsSendBuffer)
	forward := func(event helpctx.Event) {
		select {
		case send <- event:
		default:
			// A stalled client drops events rather than blocking the
			// tracker's synchronous emit path.
		}
	}

	kinds := []helpctx.EventKind{
		helpctx.EventRoleChanged,
		helpctx.EventPageChanged,
		helpctx.EventSectionChanged,
		helpctx.EventUpdated,
	}
	subs := make([]helpctx.Subscription, 0, len(kinds))
	for _, kind := range kinds {
		subs = append(subs, s.tracker.On(kind, forward))
	}

	done := make(chan struct{})

	// Reader: only there to observe the close handshake.
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go func() {
		defer func() {
			for _, sub := range subs {
				s.tracker.Off(sub)
			}
			conn.Close()
		}()
		for {
			select {
			case event := <-send:
				conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := conn.WriteJSON(map[string]any{
					"event":   event.Kind.String(),
					"value":   event.Value,
					"context": event.Context,
				}); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()
}
