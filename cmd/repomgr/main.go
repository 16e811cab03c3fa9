// Command repomgr is the command-line frontend over internal/rpcapi.Core:
// it owns flag parsing and exit codes; every verb's behaviour lives in the
// core.
package main

import "github.com/wgergely/repository-manager/internal/logging"

func main() {
	logging.Setup(logging.Options{Level: "info", Console: true})
	Execute()
}
