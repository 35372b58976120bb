// Command api serves the REST API over the synced order database and
// exposes sync job control for the enabled providers.
package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Nowaker/monarch-amazon-sync/internal/cli"
	"github.com/Nowaker/monarch-amazon-sync/internal/infrastructure/config"
)

func main() {
	flags := cli.ParseServeFlags()

	cfg := config.LoadOrEnv()

	gin.SetMode(gin.ReleaseMode)

	if err := cli.RunServe(cfg, flags); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
