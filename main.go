package main

import (
	"log"
	"os"

	"github.com/samuelfneumann/gridagent/cli"
)

func main() {
	if err := cli.GetRootCommand().Execute(); err != nil {
		log.Printf("[APP] [ERROR] %v", err)
		os.Exit(1)
	}
}
