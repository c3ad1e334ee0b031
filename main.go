package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

var cli struct {
	Config    string `short:"c" help:"Config file. Default is locatormap.yaml in . or ./configs." type:"path"`
	Env       string `help:"Environment file loaded before the config." default:".env" type:"path"`
	Verbose   bool   `short:"v" help:"Show debug logs and download progress."`
	LogLevel  string `help:"Log level (debug, info, warn, error)." default:"" placeholder:"LEVEL"`
	LogFormat string `help:"Log format (text, json)." default:"" placeholder:"FORMAT"`

	Render   RenderCmd   `cmd:"" default:"withargs" help:"Render the locator map figure."`
	Prefetch PrefetchCmd `cmd:"" help:"Download every background tile the figure needs into the cache."`
	Panel    PanelCmd    `cmd:"" help:"Print the extent, ticks, labels and scale bar of one panel."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("locatormap"),
		kong.Description("Multi-panel locator map renderer"),
		kong.ShortUsageOnError())

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := ctx.Run(&globals{ctx: runCtx})
	ctx.FatalIfErrorf(err)
}
