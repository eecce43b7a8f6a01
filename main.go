/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prismengine/prism/engine"
	"github.com/prismengine/prism/engine/renderer"
	"github.com/prismengine/prism/testbed"
)

func main() {
	tb, err := testbed.NewTestGame()
	if err != nil {
		panic(err)
	}

	e, err := engine.New(tb.Game, renderer.NewHeadlessDevice())
	if err != nil {
		panic(err)
	}

	if err := e.Initialize(); err != nil {
		panic(err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		_ = e.Shutdown()
	}()

	// run engine
	if err := e.Run(); err != nil {
		panic(err)
	}
}
