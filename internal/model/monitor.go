package model

import "time"

// MonitorResponse is the payload of the hub stats endpoint.
type MonitorResponse struct {
	Status      string          `json:"status"`
	Connections ConnectionStats `json:"connections"`
	OnlineUsers []string        `json:"onlineUsers"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats counts live connections by kind.
type ConnectionStats struct {
	TotalConnected int `json:"totalConnected"`
	TotalBound     int `json:"totalBound"`
	TotalAnonymous int `json:"totalAnonymous"`
}

// ClientInfo describes one live connection.
type ClientInfo struct {
	ConnectionID string    `json:"connectionId"`
	UserID       string    `json:"userId,omitempty"`
	ConnectedAt  time.Time `json:"connectedAt"`
}
