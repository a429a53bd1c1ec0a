package hub

import (
	"github.com/divverma2003/chat-with-me/internal/model"
)

// MonitorService gathers hub statistics for the monitoring endpoint.
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service.
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats returns a snapshot of live connections and the online set.
func (ms *MonitorService) GetStats() model.MonitorResponse {
	ms.hub.mu.Lock()
	clients := make([]model.ClientInfo, 0, len(ms.hub.sessions))
	stats := model.ConnectionStats{TotalConnected: len(ms.hub.sessions)}
	for _, s := range ms.hub.sessions {
		if s.userID == "" {
			stats.TotalAnonymous++
		} else {
			stats.TotalBound++
		}
		clients = append(clients, model.ClientInfo{
			ConnectionID: s.connID,
			UserID:       s.userID,
			ConnectedAt:  s.connectedAt,
		})
	}
	ms.hub.mu.Unlock()

	status := "healthy"
	if stats.TotalConnected == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: stats,
		OnlineUsers: ms.hub.dir.Snapshot(),
		Clients:     clients,
	}
}
