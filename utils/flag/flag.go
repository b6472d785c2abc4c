/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/

package flag

import (
	"flag"
	"os"
	"strings"
)

const (
	APIServer = "api_server"
	Pipeline  = "pipeline"
)

var (
	IsDevelopment bool
	ServiceName   string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", Pipeline, "'api_server' or 'pipeline'")
	// Parsing at init time breaks `go test`: the testing package registers
	// its -test.* flags after package inits run, so an init-time Parse
	// rejects them. Skip the parse inside test binaries only.
	if !strings.HasSuffix(os.Args[0], ".test") {
		flag.Parse()
	}
}
