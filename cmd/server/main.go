package main

import (
	"log"

	approuters "github.com/divverma2003/chat-with-me/internal/app_routers"
	"github.com/divverma2003/chat-with-me/internal/configuration"
)

func main() {
	container, err := configuration.BuildContainer()
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// Ensure cleanup on shutdown
	defer container.Close()

	approuters.StartServer(container)
}
