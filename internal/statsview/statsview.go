// Package statsview serves live Go runtime charts for long-running bridges.
//
// Charts are available at http://<addr>/debug/statsview once launched.
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const DefaultAddress = "localhost:12600"
const url = "/debug/statsview"

// Launch starts the stats server in a new goroutine. The returned function
// shuts it down.
func Launch(addr string, output io.Writer) (stop func()) {
	if addr == "" {
		addr = DefaultAddress
	}
	viewer.SetConfiguration(viewer.WithAddr(addr))
	mgr := statsview.New()
	go mgr.Start()

	fmt.Fprintf(output, "stats server available at %s%s\n", addr, url)
	return mgr.Stop
}
