package app

// Version is overridden at build time with -ldflags "-X fluvid/internal/app.Version=...".
var Version = "dev"
