package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

const writeTimeout = 5 * time.Second

// StreamOptions configures the websocket handshake.
type StreamOptions struct {
	// OriginPatterns lists hosts allowed to open cross-origin connections.
	OriginPatterns []string
}

// Stream upgrades the request to a websocket and writes every notification
// received on notes as a JSON message until notes is closed, the client
// disconnects or ctx ends. Callers subscribe before checking that the session
// exists, so a session ended in between still closes the stream.
func Stream(ctx context.Context, w http.ResponseWriter, r *http.Request, notes <-chan Notification, opts StreamOptions) error {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: opts.OriginPatterns,
	})
	if err != nil {
		return fmt.Errorf("accept websocket: %w", err)
	}
	defer c.CloseNow()

	// Clients only listen; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx = c.CloseRead(ctx)
	slog.Debug("notification stream opened", "remote", r.RemoteAddr)

	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return nil
		case n, ok := <-notes:
			if !ok {
				c.Close(websocket.StatusGoingAway, "session ended")
				return nil
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, c, n)
			wcancel()
			if err != nil {
				return fmt.Errorf("write notification: %w", err)
			}
		}
	}
}
