// dscore scores speaker diarization output against a reference.
//
// Usage:
//
//	dscore score ref.rttm sys.rttm [--collar=0.25] [--score-overlaps] [--step=0.01] [--nats]
//	dscore batch scores.tsv ref_dir sys_dir [-S all.scp] [--additional-columns=Corpus=AMI] [-j N]
//	dscore confusion ref.rttm sys.rttm [--norm] [--step=0.01]
//	dscore serve [--addr=:9080]
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
