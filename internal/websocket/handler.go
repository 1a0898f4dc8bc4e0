package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/ladle/internal/auth"
)

// HandleWebSocket returns an HTTP handler that upgrades connections to
// WebSocket and runs them as Hub clients scoped to the caller's family.
// It must sit behind RequireAuth so the family is resolved.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		familyID := auth.FamilyID(r.Context())
		if familyID == 0 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// The SPA may be served from a different origin than the API.
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, familyID)
		client.Run(r.Context())
	}
}
