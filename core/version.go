package core

import "time"

// Version is overridden at build time with -ldflags "-X sorabackend/core.Version=..."
var Version = "dev"

var startedAt = time.Now()

func Uptime() time.Duration {
	return time.Since(startedAt)
}
