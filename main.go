package main

import (
	"github.com/XAbade/tap-sherpaan/drivers/sherpa"
	"github.com/XAbade/tap-sherpaan/protocol"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

func main() {
	driver := sherpa.NewSherpa()
	if err := protocol.CreateRootCommand(driver).Execute(); err != nil {
		logger.Fatal(err)
	}
}
