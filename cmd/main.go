package main

import (
	"os"

	"github.com/golang/glog"

	"quiz-portal/internal/cli"
)

func main() {
	defer glog.Flush()
	if err := cli.Execute(); err != nil {
		glog.Errorf("%v", err)
		glog.Flush()
		os.Exit(1)
	}
}
