package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// InitializeSchedules starts all the cron jobs (currently just the session
// janitor, which clears uploads stuck in artboard selection so the document
// parser resources get released)
func (serverHandler *ServerHandler) InitializeSchedules() {
	ttl := time.Duration(serverHandler.ServerConfig.SessionTTLMinutes) * time.Minute

	c := cron.New()
	var janitorJob cron.Job
	janitorJob = cron.FuncJob(func() {
		if serverHandler.Engine.ExpireStale(ttl) {
			Logger.Info("Session janitor cleared a stale upload")
		}
	})
	janitorJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(janitorJob) //ensure we don't kick off another if old one is still running
	c.AddJob(fmt.Sprintf("@every %dm", serverHandler.ServerConfig.JanitorIntervalMinutes), janitorJob)
	Logger.Info("Adding session janitor scheduler",
		"interval_minutes", serverHandler.ServerConfig.JanitorIntervalMinutes,
		"ttl_minutes", serverHandler.ServerConfig.SessionTTLMinutes)
	c.Start()
}
