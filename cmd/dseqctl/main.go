// Command dseqctl drives local demonstration and benchmark runs of the
// distributed-sequence library over its in-process fabric.
package main

import "github.com/dmrogers-hpc/dseq/cmd/dseqctl/cmd"

func main() {
	cmd.Execute()
}
