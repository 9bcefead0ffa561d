package main

import (
	"github.com/pfrederiksen/lolesports-ical/internal/cli"
)

func main() {
	cli.Execute()
}
